package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/cvkeeper/internal/client/models"
)

// Theme shows or changes the persisted UI theme preference.
//
//	theme           — print the current theme
//	theme dark      — switch and persist
func (a *App) Theme(ctx context.Context, args []string) error {
	prefs, err := a.store.ReadPreferences(ctx)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		theme := prefs.Theme
		if theme == "" {
			theme = "light"
		}
		printlnFn("Theme:", theme)
		return nil
	}

	switch args[0] {
	case "light", "dark":
	default:
		return fmt.Errorf("unknown theme %q (want light or dark)", args[0])
	}

	prefs.Theme = args[0]
	if err := a.store.WritePreferences(ctx, models.Preferences{Theme: prefs.Theme}); err != nil {
		return err
	}
	printlnFn("Theme set to", prefs.Theme)
	return nil
}
