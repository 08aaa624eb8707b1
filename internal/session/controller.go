// Package session owns the authenticated lifecycle: login, logout, startup
// restore, and the single teardown path used when the service reports that
// the credential is no longer valid.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/akrishnanDG/migration-analyzer/internal/credential"
	"github.com/akrishnanDG/migration-analyzer/internal/gateway"
	"github.com/akrishnanDG/migration-analyzer/internal/models"
	"golang.org/x/sync/errgroup"
)

// View is the top-level screen being shown
type View string

const (
	ViewLogin   View = "login"
	ViewAnalyze View = "analyze"
	ViewHistory View = "history"
)

// ErrNotAuthenticated is returned when an authenticated view is requested
// without a credential
var ErrNotAuthenticated = errors.New("not logged in")

// AuthAPI is the part of the gateway the controller needs
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Me(ctx context.Context) (*models.User, error)
}

// Workflow is the analysis state reset on teardown
type Workflow interface {
	Reset()
	OnSessionExpired(fn func())
}

// History is the report list reset on teardown
type History interface {
	List(ctx context.Context, skip int) ([]models.ReportSummary, error)
	Reset()
	OnSessionExpired(fn func())
}

// Controller coordinates the credential store with the workflow and history
type Controller struct {
	creds    credential.Store
	auth     AuthAPI
	workflow Workflow
	history  History

	mu      sync.Mutex
	view    View
	user    *models.User
	expired bool
}

// New creates a Controller and routes expiry signals from the workflow and
// history into HandleSessionExpired
func New(creds credential.Store, auth AuthAPI, wf Workflow, history History) *Controller {
	c := &Controller{
		creds:    creds,
		auth:     auth,
		workflow: wf,
		history:  history,
		view:     ViewLogin,
	}
	if creds.IsAuthenticated() {
		c.view = ViewAnalyze
	}

	wf.OnSessionExpired(c.HandleSessionExpired)
	history.OnSessionExpired(c.HandleSessionExpired)
	return c
}

// Authenticated reports whether a credential is held
func (c *Controller) Authenticated() bool {
	return c.creds.IsAuthenticated()
}

// View returns the current view
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// User returns the profile loaded by Login or Bootstrap, if any
func (c *Controller) User() (*models.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user, c.user != nil
}

// Expired reports whether the last teardown came from a session expiry
func (c *Controller) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// SetView switches between the authenticated views
func (c *Controller) SetView(v View) error {
	if v != ViewLogin && !c.creds.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = v
	return nil
}

// Login validates the form, exchanges it for a credential, and loads the
// user's profile. A failed profile lookup does not undo the login.
func (c *Controller) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if err := ValidateLogin(req); err != nil {
		return nil, err
	}

	if _, err := c.auth.Login(ctx, req); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.view = ViewAnalyze
	c.expired = false
	c.mu.Unlock()

	user, err := c.auth.Me(ctx)
	if err != nil {
		if c.Guard(err) {
			return nil, err
		}
		slog.Warn("failed to load user profile", "error", err)
		user = &models.User{Email: req.Email}
	}

	c.mu.Lock()
	c.user = user
	c.mu.Unlock()

	slog.Info("logged in", "email", user.Email)
	return user, nil
}

// Register creates an account. The user must log in separately.
func (c *Controller) Register(ctx context.Context, req models.RegisterRequest, confirmPassword string) (*models.User, error) {
	if err := ValidateRegistration(req, confirmPassword); err != nil {
		return nil, err
	}
	return c.auth.Register(ctx, req)
}

// Bootstrap restores a persisted session. It loads the profile and the
// first page of history in parallel. Without a credential it does nothing.
func (c *Controller) Bootstrap(ctx context.Context) error {
	if !c.creds.IsAuthenticated() {
		c.mu.Lock()
		c.view = ViewLogin
		c.mu.Unlock()
		return nil
	}

	var user *models.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := c.auth.Me(gctx)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	g.Go(func() error {
		_, err := c.history.List(gctx, 0)
		// The registry keeps list failures for display
		if errors.Is(err, gateway.ErrSessionExpired) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		c.Guard(err)
		return err
	}

	c.mu.Lock()
	c.user = user
	if c.view == ViewLogin {
		c.view = ViewAnalyze
	}
	c.mu.Unlock()
	return nil
}

// Guard routes a session expiry seen outside the workflow and history into
// HandleSessionExpired. It reports whether err was an expiry.
func (c *Controller) Guard(err error) bool {
	if !errors.Is(err, gateway.ErrSessionExpired) {
		return false
	}
	c.HandleSessionExpired()
	return true
}

// Logout discards the credential and all user data
func (c *Controller) Logout() {
	c.teardown(false)
	slog.Info("logged out")
}

// HandleSessionExpired runs the same teardown as Logout. Concurrent and
// repeated calls leave the same final state as a single call.
func (c *Controller) HandleSessionExpired() {
	c.teardown(true)
}

func (c *Controller) teardown(expired bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.creds.Clear(); err != nil {
		slog.Warn("failed to clear credentials", "error", err)
	}
	c.workflow.Reset()
	c.history.Reset()

	c.user = nil
	c.view = ViewLogin
	if expired {
		c.expired = true
	}
}
