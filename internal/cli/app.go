package cli

import (
	"errors"
	"fmt"

	"github.com/akrishnanDG/migration-analyzer/internal/credential"
	"github.com/akrishnanDG/migration-analyzer/internal/gateway"
	"github.com/akrishnanDG/migration-analyzer/internal/models"
	"github.com/akrishnanDG/migration-analyzer/internal/registry"
	"github.com/akrishnanDG/migration-analyzer/internal/session"
	"github.com/akrishnanDG/migration-analyzer/internal/validator"
	"github.com/akrishnanDG/migration-analyzer/internal/workflow"
	"github.com/akrishnanDG/migration-analyzer/pkg/config"
)

var errNotLoggedIn = errors.New("not logged in. Run 'migration-analyzer login' first")

// app wires the components a command needs
type app struct {
	cfg       *config.Config
	creds     *credential.FileStore
	client    *gateway.Client
	workflow  *workflow.Orchestrator
	registry  *registry.Registry
	session   *session.Controller
	validator *validator.Validator
}

func newApp(cfg *config.Config) (*app, error) {
	creds := credential.NewFileStore(cfg.Auth.CredentialsFile)

	client, err := gateway.New(cfg, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	v := validator.New(cfg)
	wf := workflow.New(client, v, models.MigrationConfig{
		SourceVersion: cfg.Migration.SourceVersion,
		TargetVersion: cfg.Migration.TargetVersion,
	})
	reg := registry.New(client, wf, cfg.Reports.PageSize)

	return &app{
		cfg:       cfg,
		creds:     creds,
		client:    client,
		workflow:  wf,
		registry:  reg,
		session:   session.New(creds, client, wf, reg),
		validator: v,
	}, nil
}

// newAppFor resolves the configuration and builds the app
func newAppFor(opts *rootOptions) (*app, error) {
	cfg, err := opts.config()
	if err != nil {
		return nil, err
	}
	return newApp(cfg)
}

func (a *app) requireLogin() error {
	if !a.session.Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

func (a *app) thresholds() models.StatusThresholds {
	return models.StatusThresholds{MinorIssues: a.cfg.Status.MinorIssueThreshold}
}

func (a *app) jsonOutput() bool {
	return a.cfg.Output.Format == "json"
}
