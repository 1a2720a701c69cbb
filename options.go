package records

import "github.com/goliatone/go-records/pkg/activity"

// Option configures the ambient collaborators of a Model: logging and
// activity emission. The record declaration itself lives in Config.
type Option func(*modelOptions)

type modelOptions struct {
	logger        Logger
	activityHooks activity.Hooks
	activityCfg   activity.Config
	activitySet   bool
}

func applyOptions(opts []Option) modelOptions {
	cfg := modelOptions{logger: noopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	return cfg
}

func (cfg modelOptions) emitter() *activity.Emitter {
	if len(cfg.activityHooks) == 0 {
		return nil
	}
	settings := cfg.activityCfg
	if !cfg.activitySet {
		settings.Enabled = true
	}
	return activity.NewEmitter(cfg.activityHooks, settings)
}
