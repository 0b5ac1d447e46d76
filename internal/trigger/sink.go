package trigger

import "github.com/listenupapp/docwatch/internal/generator"

// Sink receives every dispatch result exactly once.
type Sink func(generator.Result)

// Sinks fans a result out to each non-nil sink in order.
func Sinks(sinks ...Sink) Sink {
	active := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return func(result generator.Result) {
		for _, s := range active {
			s(result)
		}
	}
}
