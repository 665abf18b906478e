package sandboxes

import "github.com/reusee/lud/logs"

// Confine locks process-wide filesystem writes down to the resolver root.
type Confine func() error

func (Module) Confine(
	logger logs.Logger,
	getResolver GetResolver,
) Confine {
	return func() error {
		resolver, err := getResolver()
		if err != nil {
			return err
		}
		return confine(logger, resolver.Root())
	}
}
