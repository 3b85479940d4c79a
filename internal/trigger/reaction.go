// /internal/trigger/reaction.go
package trigger

// Handler is one named unit of work bound to a trigger.
type Handler interface {
	Name() string
	Description() string
	Run(ctx *Context) error
}

// Reaction is a two-phase handler: Pre parses and validates the raw message
// content into a typed payload, Exec performs the side effect. Reactions are
// stateless templates; each matching event gets a fresh context.
//
// Pre may return a *UserError to abort with a message to the channel, or
// ErrAborted when the user cancels an interactive prompt. Side effects
// (sending messages, storing data, playing audio) belong in Exec only.
type Reaction[P any] struct {
	ReactionName string
	Short        string
	Pre          func(ctx *Context) (P, error)
	Exec         func(ctx *Context, payload P) error
}

func (r *Reaction[P]) Name() string        { return r.ReactionName }
func (r *Reaction[P]) Description() string { return r.Short }

func (r *Reaction[P]) Run(ctx *Context) error {
	var payload P
	if r.Pre != nil {
		p, err := r.Pre(ctx)
		if err != nil {
			return err
		}
		payload = p
	}
	if r.Exec == nil {
		return nil
	}
	return r.Exec(ctx, payload)
}
