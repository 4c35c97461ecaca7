package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/cvkeeper/internal/client/models"
)

// WhoAmI prints the cached profile of the logged-in user.
func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.session.Snapshot()
	if !snap.Authenticated || snap.User == nil {
		printlnFn("Not logged in.")
		return nil
	}
	u := snap.User
	printlnFn(fmt.Sprintf("%s <%s> role=%s active=%t verified=%t", u.FullName(), u.Email, u.Role, u.IsActive, u.IsVerified))
	return nil
}

// UpdateProfile prompts for new field values (empty keeps the current one)
// and sends a partial update. The session's cached user is replaced with
// the server's answer.
func (a *App) UpdateProfile(ctx context.Context) error {
	snap := a.session.Snapshot()
	if !snap.Authenticated || snap.User == nil {
		printlnFn("Not logged in.")
		return nil
	}

	var upd models.ProfileUpdate

	email, err := getSimpleText(a.reader, fmt.Sprintf("Email [%s] (empty keeps current)", snap.User.Email), os.Stdout)
	if err != nil {
		return err
	}
	if email != "" {
		upd.Email = &email
	}

	firstName, err := getSimpleText(a.reader, fmt.Sprintf("First name [%s] (empty keeps current)", snap.User.FirstName), os.Stdout)
	if err != nil {
		return err
	}
	if firstName != "" {
		upd.FirstName = &firstName
	}

	lastName, err := getSimpleText(a.reader, fmt.Sprintf("Last name [%s] (empty keeps current)", snap.User.LastName), os.Stdout)
	if err != nil {
		return err
	}
	if lastName != "" {
		upd.LastName = &lastName
	}

	if upd.Email == nil && upd.FirstName == nil && upd.LastName == nil {
		printlnFn("Nothing to update.")
		return nil
	}

	if err := a.session.UpdateProfile(ctx, upd); err != nil {
		return err
	}
	printlnFn("Profile updated.")
	return nil
}

// DeleteAccount permanently removes the account after an explicit
// confirmation prompt.
func (a *App) DeleteAccount(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Type 'delete' to permanently remove your account", os.Stdout)
	if err != nil {
		return err
	}
	if answer != "delete" {
		printlnFn("Cancelled.")
		return nil
	}

	if err := a.session.DeleteAccount(ctx); err != nil {
		return err
	}
	printlnFn("Account deleted.")
	return nil
}
