package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"floradex/internal/config"
	"floradex/internal/encryption"
	"floradex/internal/flora"
	"floradex/internal/media"
	"floradex/internal/session"
)

// App is the application layer between the CLI and the flora services.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw strings, and manages store/log lifecycle on Close.
type App struct {
	cfg        *config.Config
	store      flora.SessionStore
	sealer     flora.TokenSealer
	media      *media.Manager
	auth       *flora.AuthService
	identifier *flora.Identifier
	collection *flora.CollectionService
	workflow   *flora.Workflow
	logger     flora.Logger
	logFile    *os.File
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "Login", "Identify") and is
// logged at startup. idgen produces the run ID that correlates this
// invocation's log lines. The caller must call Close when done.
func NewApp(cfg *config.Config, operation string, idgen flora.IDGenerator) (*App, error) {
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("no api base_url configured")
	}

	runID := idgen.New()
	slogger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	sealer, err := encryption.NewTokenSealerFromConfig(cfg.Encryption)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating token sealer: %w", err)
	}

	store, err := session.NewSessionStoreFromConfig(cfg.Session, sealer)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating session store: %w", err)
	}

	// Timeout 0 leaves the transport default in place; in-flight calls are
	// otherwise not cancellable.
	client := &http.Client{Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second}

	eps := endpointsFromConfig(cfg.API)
	base := cfg.API.BaseURL
	resolver := flora.NewEndpointResolver(base, client, logger)

	a := &App{
		cfg:        cfg,
		store:      store,
		sealer:     sealer,
		media:      media.NewManager(),
		auth:       flora.NewAuthService(store, client, base, eps, logger),
		identifier: flora.NewIdentifier(store, client, base, eps, logger),
		collection: flora.NewCollectionService(store, resolver, client, base, eps, flora.RealClock{}, logger),
		workflow:   flora.NewWorkflow(),
		logger:     logger,
		logFile:    logFile,
	}

	logger.Debug("app initialized", "operation", operation, "base_url", base)
	return a, nil
}

// endpointsFromConfig overlays any configured path overrides on the
// canonical defaults.
func endpointsFromConfig(cfg config.APIConfig) flora.Endpoints {
	eps := flora.DefaultEndpoints()
	if cfg.LoginPath != "" {
		eps.Login = cfg.LoginPath
	}
	if cfg.RegisterPath != "" {
		eps.Register = cfg.RegisterPath
	}
	if cfg.IdentifyPath != "" {
		eps.Identify = cfg.IdentifyPath
	}
	if cfg.AddPlantPath != "" {
		eps.AddPlant = cfg.AddPlantPath
	}
	if cfg.SpeciesPath != "" {
		eps.Species = cfg.SpeciesPath
	}
	if cfg.AccountPath != "" {
		eps.Account = cfg.AccountPath
	}
	if len(cfg.ListPlantPaths) > 0 {
		eps.ListPlants = cfg.ListPlantPaths
	}
	if len(cfg.DeletePlantPaths) > 0 {
		eps.DeletePlants = cfg.DeletePlantPaths
	}
	return eps
}

// Login authenticates and persists the session.
func (a *App) Login(ctx context.Context, username, password string) (*flora.Session, error) {
	return a.auth.Login(ctx, username, password)
}

// Register creates an account and persists the session.
func (a *App) Register(ctx context.Context, username, password string) (*flora.Session, error) {
	return a.auth.Register(ctx, username, password)
}

// Logout clears the stored session.
func (a *App) Logout() error {
	return a.auth.Logout()
}

// Session returns the stored session, or nil when logged out.
func (a *App) Session() (*flora.Session, error) {
	return a.store.Get()
}

// DeleteAccount removes the account and, on success, the stored session.
func (a *App) DeleteAccount(ctx context.Context) error {
	return a.auth.DeleteAccount(ctx)
}

// Identify loads the image at rawPath and runs it through the identification
// workflow, leaving the workflow in ResultShown on success so SaveResult or
// Discard can follow. The returned Image is the acquired local image, for a
// subsequent save.
func (a *App) Identify(ctx context.Context, rawPath string) (*flora.IdentificationResult, *flora.Image, error) {
	img, err := a.media.Resolve(rawPath)
	if err != nil {
		return nil, nil, err
	}
	if err := a.workflow.Apply(flora.EventSelectImage); err != nil {
		return nil, nil, err
	}
	if err := a.workflow.Apply(flora.EventIdentifyStart); err != nil {
		return nil, nil, err
	}

	result, err := a.identifier.Identify(ctx, img)
	if err != nil {
		a.workflow.Apply(flora.EventIdentifyFail)
		return nil, nil, err
	}

	if err := a.workflow.Apply(flora.EventIdentifyDone); err != nil {
		return nil, nil, err
	}
	return result, img, nil
}

// SaveResult persists the shown identification result to the collection.
// Valid only while the workflow is in ResultShown.
func (a *App) SaveResult(ctx context.Context, result *flora.IdentificationResult, img *flora.Image, name string) (*flora.Plant, error) {
	if err := a.workflow.Apply(flora.EventSaveStart); err != nil {
		return nil, err
	}

	plant, err := a.collection.Save(ctx, result, img, name)
	if err != nil {
		a.workflow.Apply(flora.EventSaveFail)
		return nil, err
	}

	if err := a.workflow.Apply(flora.EventSaveDone); err != nil {
		return nil, err
	}
	return plant, nil
}

// Discard drops the shown identification result without saving.
func (a *App) Discard() error {
	return a.workflow.Apply(flora.EventDiscard)
}

// WorkflowState exposes the current workflow position.
func (a *App) WorkflowState() flora.State {
	return a.workflow.State()
}

// ListCollection fetches the saved plant collection.
func (a *App) ListCollection(ctx context.Context) ([]flora.Plant, error) {
	return a.collection.List(ctx)
}

// RemovePlant deletes a plant from the collection by id.
func (a *App) RemovePlant(ctx context.Context, plantID string) error {
	return a.collection.Remove(ctx, plantID)
}

// CareInfo fetches care instructions for a species type.
func (a *App) CareInfo(ctx context.Context, plantType string) (*flora.CareInfo, error) {
	return a.identifier.CareInfo(ctx, plantType)
}

// SetupSealer generates session-token key material. Called from
// `floradex config init`; a nil sealer ("none") is a no-op.
func (a *App) SetupSealer() error {
	if a.sealer == nil {
		return nil
	}
	if a.sealer.IsConfigured() {
		return nil
	}
	return a.sealer.Setup()
}

// Close releases the session store and the log file.
func (a *App) Close() error {
	var firstErr error

	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing session store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
