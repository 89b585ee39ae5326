package validation

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/config"
)

// Provider names accepted in the configuration.
const (
	ProviderAFIP     = "afip"
	ProviderChecksum = "checksum"
	ProviderNone     = "none"
)

// FromConfig returns the validator selected by cfg.Provider. A list of
// providers returns a Chain of them; "none" entries are dropped from a list.
//
// The "afip" provider without a base URL cannot reach the service; it logs
// a warning and falls back to a NoopValidator so the totals are still
// checked.
func FromConfig(cfg config.ValidatorConfig, logger *zap.Logger) (DocumentValidator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	names := config.SplitProviders(cfg.Provider)
	if len(names) == 0 {
		names = []string{ProviderAFIP}
	}
	if len(names) == 1 {
		return fromProvider(names[0], cfg, logger)
	}

	var chain Chain
	for _, name := range names {
		if name == ProviderNone {
			continue
		}
		v, err := fromProvider(name, cfg, logger)
		if err != nil {
			return nil, err
		}
		if _, noop := v.(NoopValidator); noop {
			continue
		}
		chain = append(chain, v)
	}

	switch len(chain) {
	case 0:
		return NoopValidator{}, nil
	case 1:
		return chain[0], nil
	}
	return chain, nil
}

func fromProvider(name string, cfg config.ValidatorConfig, logger *zap.Logger) (DocumentValidator, error) {
	switch name {
	case ProviderAFIP:
		if cfg.BaseURL == "" {
			logger.Warn("AFIP base URL not configured, document validation disabled")
			return NoopValidator{}, nil
		}
		return NewAFIPClient(AFIPOptions{
			BaseURL:           cfg.BaseURL,
			Username:          cfg.Username,
			Password:          cfg.Password,
			ChunkSize:         cfg.ChunkSize,
			MaxCalls:          cfg.MaxCalls,
			PauseDuration:     cfg.PauseDuration,
			MaxRetries:        cfg.MaxRetries,
			RetryDelay:        cfg.RetryDelay,
			Timeout:           cfg.Timeout,
			ServicesAvailable: cfg.ServicesAvailable,
			ErrorKeys:         cfg.ErrorKeys,
			ErrorMessages:     cfg.ErrorMessages,
		}, logger), nil
	case ProviderChecksum:
		return ChecksumValidator{}, nil
	case ProviderNone:
		return NoopValidator{}, nil
	default:
		return nil, fmt.Errorf("unknown validator provider %q", name)
	}
}
