package httpkit

import (
	"sync"

	"orgcore/internal/core/governance"
	"orgcore/internal/platform/logger"
	"orgcore/internal/platform/net/http/bind"
)

var rulesOnce sync.Once

// RegisterGovernanceRules adds the residency and classification validate tags
// Safe to call from every module that binds labelled input
func RegisterGovernanceRules() {
	rulesOnce.Do(func() {
		rules := []struct {
			tag, msg string
			fn       func(bind.FieldLevel) bool
		}{
			{"residency", "{0} must be a known data residency", func(fl bind.FieldLevel) bool {
				_, err := governance.ParseResidency(fl.Field().String())
				return err == nil
			}},
			{"classification", "{0} must be a known data classification", func(fl bind.FieldLevel) bool {
				_, err := governance.ParseClassification(fl.Field().String())
				return err == nil
			}},
		}
		for _, r := range rules {
			if err := bind.RegisterValidation(r.tag, r.msg, r.fn); err != nil {
				logger.Named("bind").Error().Err(err).Str("tag", r.tag).Msg("register validation")
			}
		}
	})
}
