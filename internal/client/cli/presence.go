package cli

import "context"

func (a *App) Busy(ctx context.Context, value string) error {
	me := a.me()
	if me == "" {
		return errNotSignedIn
	}
	busy, err := parseSwitch(value)
	if err != nil {
		return err
	}
	return a.track(a.rec.SetBusy(ctx, me, busy))
}

func (a *App) Ring(ctx context.Context, ref string) error {
	return a.relate(ctx, ref, "Ringing", func(ctx context.Context, me, other string) error {
		return a.rec.Ring(ctx, me, other)
	})
}

func (a *App) Answer(ctx context.Context) error {
	me := a.me()
	if me == "" {
		return errNotSignedIn
	}
	return a.track(a.rec.AnswerCall(ctx, me))
}
