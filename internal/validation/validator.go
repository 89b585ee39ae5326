// =============================================================================
// IVA Book Reconciler - Document Validation
// =============================================================================
//
// This module decides which counterpart tax IDs (CUIT/CUIL) of a book must be
// replaced by a generic ID. The reconciler only depends on the narrow
// DocumentValidator contract: submit a list of IDs, receive the subset that
// is flagged invalid.
//
// IMPLEMENTATIONS:
//   - AFIPClient:        asks the AFIP inscription service (afip.go)
//   - ChecksumValidator: flags IDs whose CUIT check digit is wrong
//   - StaticValidator:   returns a fixed list (offline runs and tests)
//   - NoopValidator:     flags nothing
//   - Chain:             unions the results of several validators
//
// ERROR HANDLING:
//   Validators return errors; the engine logs them and carries on as if
//   nothing had been flagged. A failed lookup never aborts a reconciliation.
//
// =============================================================================

package validation

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DocumentValidator reports which of the given IDs are invalid.
type DocumentValidator interface {
	Validate(ctx context.Context, ids []int64) ([]string, error)
}

// =============================================================================
// SIMPLE VALIDATORS
// =============================================================================

// NoopValidator never flags anything.
type NoopValidator struct{}

func (NoopValidator) Validate(context.Context, []int64) ([]string, error) {
	return nil, nil
}

// StaticValidator flags the IDs of a fixed list that were submitted.
type StaticValidator struct {
	Invalid []string
}

func (v StaticValidator) Validate(_ context.Context, ids []int64) ([]string, error) {
	submitted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		submitted[strconv.FormatInt(id, 10)] = struct{}{}
	}

	var out []string
	for _, s := range v.Invalid {
		if _, ok := submitted[strings.TrimSpace(s)]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// ChecksumValidator flags IDs that are not 11 digits long or whose last
// digit does not match the CUIT modulo-11 check digit.
type ChecksumValidator struct{}

func (ChecksumValidator) Validate(_ context.Context, ids []int64) ([]string, error) {
	var out []string
	for _, id := range ids {
		s := strconv.FormatInt(id, 10)
		if msg := validateCUIT(s); msg != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// validateCUIT returns an empty string for a well-formed CUIT, or the reason
// it is not.
func validateCUIT(value string) string {
	if len(value) != 11 {
		return fmt.Sprintf("CUIT '%s' must have 11 digits", value)
	}

	sum := 0
	for i, w := range cuitWeights {
		d := value[i]
		if d < '0' || d > '9' {
			return fmt.Sprintf("CUIT '%s' is not numeric", value)
		}
		sum += int(d-'0') * w
	}

	// Check digit 10 is only valid under the reissued 23, 24 and 33
	// prefixes, which write it as 9.
	check := 11 - sum%11
	switch check {
	case 11:
		check = 0
	case 10:
		switch value[:2] {
		case "23", "24", "33":
			check = 9
		default:
			return fmt.Sprintf("CUIT '%s' has no valid check digit under prefix %s", value, value[:2])
		}
	}

	if int(value[10]-'0') != check {
		return fmt.Sprintf("CUIT '%s' has check digit %c, expected %d", value, value[10], check)
	}
	return ""
}

// =============================================================================
// CHAIN
// =============================================================================

// Chain runs every validator and returns the union of their results in
// first-seen order. The first error stops the chain.
type Chain []DocumentValidator

func (c Chain) Validate(ctx context.Context, ids []int64) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string

	for _, v := range c {
		flagged, err := v.Validate(ctx, ids)
		if err != nil {
			return out, err
		}
		for _, s := range flagged {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}

	return out, nil
}

// =============================================================================
// RESPONSE FILTERING
// =============================================================================

// AccumulateErrors collects, per ID, every message found under one of keys.
// Values may be a string or a list of strings; anything else is ignored.
// IDs without any error message are left out.
func AccumulateErrors(data map[string]map[string]any, keys []string) map[string][]string {
	out := make(map[string][]string)

	for id, record := range data {
		var messages []string
		for _, key := range keys {
			switch v := record[key].(type) {
			case string:
				messages = append(messages, v)
			case []string:
				messages = append(messages, v...)
			case []any:
				for _, item := range v {
					if s, ok := item.(string); ok {
						messages = append(messages, s)
					}
				}
			}
		}
		if len(messages) > 0 {
			out[id] = messages
		}
	}

	return out
}

// FindKeysWithMessages returns the IDs having at least one error that
// contains one of messages.
func FindKeysWithMessages(errs map[string][]string, messages []string) []string {
	var out []string

	for id, list := range errs {
		if containsAny(list, messages) {
			out = append(out, id)
		}
	}

	sort.Strings(out)
	return out
}

func containsAny(list, messages []string) bool {
	for _, item := range list {
		for _, msg := range messages {
			if strings.Contains(item, msg) {
				return true
			}
		}
	}
	return false
}
