package app

import (
	"context"
	"fmt"
	"time"

	"codelingo/internal/devtools"
	"codelingo/internal/progress"
	"codelingo/internal/router"
)

// Seed overwrites the saved progress with a demo scenario and returns the
// route token worth opening next.
func (a *App) Seed(ctx context.Context, demo devtools.Demo, name string) (string, error) {
	sc, err := demo.Resolve(name)
	if err != nil {
		return "", err
	}
	if err := a.engine.Reset(ctx); err != nil {
		return "", fmt.Errorf("clear before seeding: %w", err)
	}
	st := a.engine.State()
	sc.Apply(st, time.Now())
	if err := a.repo.Save(ctx, st); err != nil {
		return "", fmt.Errorf("save seeded state: %w", err)
	}
	a.engine = progress.New(a.repo, st, progress.Options{Rules: rulesFor(a.cfg), SessionID: a.sessionID})
	a.logger.Info("seeded demo state", "scenario", sc.Name)

	route := router.Route{Name: sc.Route}
	if sc.Route == router.Map {
		route = router.MapOf(st.SelectedCourseID)
	}
	return route.String(), nil
}
