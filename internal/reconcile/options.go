package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/bookparser"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/config"
)

// OptionsFromConfig converts the reconciliation settings of cfg.
func OptionsFromConfig(cfg *config.MainConfig) (Options, error) {
	opts := DefaultOptions()

	if cfg.Threshold != nil {
		opts.Threshold = decimal.NewFromFloat(*cfg.Threshold)
	}
	if cfg.CompareField > 0 {
		opts.CompareField = cfg.CompareField
	}
	if cfg.DocumentField > 0 {
		opts.DocumentField = cfg.DocumentField
	}
	if cfg.GenericIDs.LegalEntity != "" {
		opts.GenericIDs.LegalEntity = cfg.GenericIDs.LegalEntity
	}
	if cfg.GenericIDs.NaturalPerson != "" {
		opts.GenericIDs.NaturalPerson = cfg.GenericIDs.NaturalPerson
	}

	if cfg.Encoding != "" {
		cs, err := bookparser.CharsetFor(cfg.Encoding)
		if err != nil {
			return Options{}, fmt.Errorf("invalid encoding: %w", err)
		}
		opts.Charset = cs
	}

	return opts, nil
}
