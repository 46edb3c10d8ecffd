package tactics

import "log/slog"

// Registry owns one Dispatcher per team for a match.
type Registry struct {
	field    Field
	tuning   Tuning
	log      *slog.Logger
	observer func(RoleChange)

	order       []string
	dispatchers map[string]*Dispatcher
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(field Field, tuning Tuning, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		field:       field,
		tuning:      tuning,
		log:         logger.With("component", "tactics"),
		dispatchers: make(map[string]*Dispatcher),
	}
}

// Dispatcher returns the team's dispatcher, creating it on first use.
func (r *Registry) Dispatcher(team string) *Dispatcher {
	if d, ok := r.dispatchers[team]; ok {
		return d
	}
	d := newDispatcher(team, r.field, r.tuning, r.log)
	d.observer = r.observer
	r.dispatchers[team] = d
	r.order = append(r.order, team)
	return d
}

// Lookup returns the team's dispatcher without creating it.
func (r *Registry) Lookup(team string) (*Dispatcher, bool) {
	d, ok := r.dispatchers[team]
	return d, ok
}

// SetObserver installs fn on every current and future dispatcher.
func (r *Registry) SetObserver(fn func(RoleChange)) {
	r.observer = fn
	for _, d := range r.dispatchers {
		d.observer = fn
	}
}

// Dispatchers returns the dispatchers in creation order.
func (r *Registry) Dispatchers() []*Dispatcher {
	out := make([]*Dispatcher, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.dispatchers[t])
	}
	return out
}

// Verify runs Dispatcher.Verify for every team.
func (r *Registry) Verify() error {
	for _, d := range r.Dispatchers() {
		if err := d.Verify(); err != nil {
			return err
		}
	}
	return nil
}
