package records

import "github.com/goliatone/go-records/pkg/activity"

// WithActivityHooks attaches hooks notified after successful Save and
// Delete calls. Nil hooks are dropped. Emission is on unless
// WithActivityConfig turns it off.
func WithActivityHooks(hooks ...activity.Hook) Option {
	extra := activity.Hooks(hooks).Compact()
	return func(cfg *modelOptions) {
		cfg.activityHooks = append(cfg.activityHooks, extra...)
	}
}

// WithActivityConfig sets the emitter switch and default channel.
func WithActivityConfig(settings activity.Config) Option {
	return func(cfg *modelOptions) {
		cfg.activityCfg = settings
		cfg.activitySet = true
	}
}

// ActivityEnabled reports whether record writes through m emit events.
func (m *Model) ActivityEnabled() bool {
	return m != nil && m.emitter.Enabled()
}
