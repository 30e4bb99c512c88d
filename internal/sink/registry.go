package sink

import "fmt"

// Constructor is a function that creates a Sink from its descriptor.
type Constructor func(cfg Config) (Sink, error)

var registry = map[string]Constructor{}

// Register adds a sink constructor under the given type name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Get returns the sink constructor for the given type name.
func Get(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown sink type: %s", name)
	}
	return ctor, nil
}

// Types returns the names of all registered sink types.
func Types() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// Build constructs a sink for every descriptor. A descriptor naming an
// unregistered type or failing construction aborts the whole build; a
// daemon should not start with half its configured backends.
func Build(cfgs []Config) ([]Sink, error) {
	sinks := make([]Sink, 0, len(cfgs))
	for _, cfg := range cfgs {
		ctor, err := Get(cfg.Type)
		if err != nil {
			closeAll(sinks)
			return nil, err
		}
		s, err := ctor(cfg)
		if err != nil {
			closeAll(sinks)
			return nil, fmt.Errorf("sink %s: %w", cfg.Type, err)
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}

func closeAll(sinks []Sink) {
	for _, s := range sinks {
		s.Close()
	}
}
