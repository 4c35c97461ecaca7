package cli

import (
	"context"
	"os"

	"github.com/dmitrijs2005/cvkeeper/internal/client/models"
)

// Login prompts for credentials and authenticates. On success the session
// controller switches the app to the dashboard view; on failure the
// backend's message is surfaced to the user and the session stays anonymous.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer WipeBytes(password)

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		return err
	}

	printlnFn("Logged in.")
	return nil
}

// Register prompts for the new account's details and creates it. A
// successful registration logs the user straight in.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	firstName, err := getSimpleText(a.reader, "Enter first name", os.Stdout)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Enter last name", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer WipeBytes(password)

	confirm, err := getPassword("Confirm password", os.Stdout)
	if err != nil {
		return err
	}
	defer WipeBytes(confirm)

	req := models.RegisterRequest{
		Email:           email,
		Password:        string(password),
		ConfirmPassword: string(confirm),
		FirstName:       firstName,
		LastName:        lastName,
	}
	if err := a.session.Register(ctx, req); err != nil {
		return err
	}

	printlnFn("Account created.")
	return nil
}

// Logout ends the session. It never fails from the user's point of view:
// the local session is gone when this returns, whatever the server said.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	printlnFn("Logged out.")
	return nil
}
