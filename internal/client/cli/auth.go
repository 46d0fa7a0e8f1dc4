package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/exoscope/internal/client/models"
	"github.com/dmitrijs2005/exoscope/internal/client/services"
	"github.com/dmitrijs2005/exoscope/internal/common"
)

// Login prompts for credentials and starts a session. The password buffer
// is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := a.in.Text("Email")
	if err != nil {
		return err
	}
	password, err := a.in.Password("Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.auth.Login(ctx, email, string(password))
	return a.welcome(user, err)
}

// Signup prompts for a new account; the password is asked twice.
func (a *App) Signup(ctx context.Context) error {
	username, err := a.in.Text("Username")
	if err != nil {
		return err
	}
	email, err := a.in.Text("Email")
	if err != nil {
		return err
	}
	password, err := a.in.Password("Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := a.in.Password("Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		return a.report(&services.ValidationError{Fields: map[string]string{"password": "passwords do not match"}})
	}

	user, err := a.auth.Signup(ctx, username, email, string(password))
	return a.welcome(user, err)
}

// welcome reports the outcome of login or signup. A session that could not
// be saved is still usable, so that case only warns.
func (a *App) welcome(user *models.User, err error) error {
	if err != nil && !errors.Is(err, services.ErrNotPersisted) {
		return a.report(err)
	}
	if err != nil {
		fmt.Fprintln(a.out, warnStyle.Render("Logged in, but the session could not be saved; you will have to log in again next time."))
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", user.Username)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.loggingOut.Store(true)
	defer a.loggingOut.Store(false)

	if err := a.auth.Logout(ctx); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	id, err := a.auth.Whoami(ctx)
	if errors.Is(err, common.ErrNotAuthenticated) {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	if err != nil {
		return a.report(err)
	}

	pairs := [][2]string{
		{"User", id.User.Username},
		{"Email", id.User.Email},
		{"ID", id.User.ID},
	}
	if id.User.CreatedAt != "" {
		pairs = append(pairs, [2]string{"Member since", id.User.CreatedAt})
	}
	if c := id.Claims; c != nil {
		if c.IssuedAt != nil {
			pairs = append(pairs, [2]string{"Token issued", c.IssuedAt.Time.Local().Format(time.DateTime)})
		}
		if c.ExpiresAt != nil {
			pairs = append(pairs, [2]string{"Token expires", c.ExpiresAt.Time.Local().Format(time.DateTime)})
		}
	}
	renderPairs(a.out, pairs)
	return nil
}
