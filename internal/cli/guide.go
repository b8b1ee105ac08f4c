package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// GuideOptions selects who is guided and where.
type GuideOptions struct {
	UserID int
	From   string
	// To skips the destination question when set.
	To string
}

// RunGuide runs one full guided trip and prints how it ended.
// Declined trips and a cancelled context are not errors.
func RunGuide(ctx *SignalContext, app *App, opts GuideOptions, out io.Writer) error {
	var (
		outcome wayfinder.Outcome
		err     error
	)
	if opts.To == "" {
		outcome, err = app.Guide.Run(ctx, opts.UserID, opts.From)
	} else {
		outcome, err = tripTo(ctx, app, opts)
	}

	switch {
	case ctx.Signal() != nil:
		printSystemMessage(out, "Trip interrupted by %v.", ctx.Signal())
		return nil
	case errors.Is(err, domain.ErrTripDeclined):
		printSystemMessage(out, "Guidance declined.")
		return nil
	case errors.Is(err, domain.ErrNoRouteFound) && outcome.Called:
		printSystemMessage(out, "No accessible route, the destination was called.")
		return nil
	case err != nil:
		return err
	}

	r := outcome.Result
	if r.Reached {
		printSystemMessage(out, "Arrived: %s (%.1f m).", outcome.Path.String(), outcome.Distance)
	} else {
		printSystemMessage(out, "Trip ended early: %s.", r.Reason)
	}
	return nil
}

func tripTo(ctx *SignalContext, app *App, opts GuideOptions) (wayfinder.Outcome, error) {
	user, err := app.Guide.Identify(ctx, opts.UserID)
	if err != nil {
		return wayfinder.Outcome{}, err
	}
	if err := app.Guide.Greet(ctx, user); err != nil {
		app.Logger.Warn("Greeting failed", "err", err)
	}
	return app.Guide.Trip(ctx, user, opts.From, opts.To)
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
