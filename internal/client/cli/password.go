package cli

import (
	"context"
	"os"

	"github.com/dmitrijs2005/cvkeeper/internal/client/models"
)

// ChangePassword rotates the logged-in user's password. The session itself
// is untouched on success.
func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword("Current password", os.Stdout)
	if err != nil {
		return err
	}
	defer WipeBytes(current)

	newPw, err := getPassword("New password", os.Stdout)
	if err != nil {
		return err
	}
	defer WipeBytes(newPw)

	confirm, err := getPassword("Confirm new password", os.Stdout)
	if err != nil {
		return err
	}
	defer WipeBytes(confirm)

	resp, err := a.session.ChangePassword(ctx, models.ChangePasswordRequest{
		CurrentPassword:    string(current),
		NewPassword:        string(newPw),
		ConfirmNewPassword: string(confirm),
	})
	if err != nil {
		return err
	}
	printlnFn(resp.Message)
	return nil
}

// RequestReset asks the backend to mail a password reset token. The backend
// answers identically for known and unknown addresses, so the printed
// message never confirms whether an account exists.
func (a *App) RequestReset(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	resp, err := a.session.RequestPasswordReset(ctx, email)
	if err != nil {
		return err
	}
	printlnFn(resp.Message)
	return nil
}

// ResetPassword completes a reset using an emailed token.
func (a *App) ResetPassword(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter reset token", os.Stdout)
	if err != nil {
		return err
	}

	newPw, err := getPassword("New password", os.Stdout)
	if err != nil {
		return err
	}
	defer WipeBytes(newPw)

	confirm, err := getPassword("Confirm new password", os.Stdout)
	if err != nil {
		return err
	}
	defer WipeBytes(confirm)

	resp, err := a.session.ResetPassword(ctx, models.ResetPasswordRequest{
		Token:              token,
		NewPassword:        string(newPw),
		ConfirmNewPassword: string(confirm),
	})
	if err != nil {
		return err
	}
	printlnFn(resp.Message)
	return nil
}
