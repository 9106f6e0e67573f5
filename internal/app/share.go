package app

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/nhle/followup/internal/credential"
	"github.com/nhle/followup/internal/engine"
	"github.com/nhle/followup/internal/share"
)

// ErrShareDisabled is returned when share intake is not configured.
var ErrShareDisabled = errors.New("share inbox is not configured")

// sharePasswordEnv overrides the keyring lookup for the inbox password.
const sharePasswordEnv = "FOLLOWUP_SHARE_PASSWORD"

// ShareInbox builds the IMAP inbox from config, loading the password from
// the environment or, failing that, the system keyring.
func (a *App) ShareInbox() (*share.Inbox, error) {
	cfg := a.Config.Share
	if !cfg.Enabled || cfg.Host == "" {
		return nil, ErrShareDisabled
	}

	password := os.Getenv(sharePasswordEnv)
	if password == "" {
		var err error
		password, err = credential.Get(credential.ShareInboxKey(cfg.Username))
		if err != nil {
			return nil, err
		}
	}

	return share.NewInbox(cfg, password, share.WithInboxLogger(a.Log)), nil
}

// CreateShared is the share sink: it creates a reminder through the session.
func (a *App) CreateShared(ctx context.Context, in engine.CreateInput) error {
	_, err := a.Session.Create(ctx, in)
	return err
}

// NewSharePoller returns a poller feeding src into the session.
func (a *App) NewSharePoller(src share.Source, opts ...share.PollerOption) *share.Poller {
	base := []share.PollerOption{
		share.WithInterval(time.Duration(a.Config.Share.PollIntervalSec) * time.Second),
		share.WithPollerLogger(a.Log),
	}
	return share.NewPoller(src, a.CreateShared, append(base, opts...)...)
}

// ImportShared runs a single intake pass against the configured inbox.
func (a *App) ImportShared(ctx context.Context, limit int) (share.Result, error) {
	inbox, err := a.ShareInbox()
	if err != nil {
		return share.Result{}, err
	}
	res := a.NewSharePoller(inbox, share.WithBatchSize(limit)).PollOnce(ctx)
	return res, res.Err
}

// StartShareIntake polls the configured inbox in the background until
// Close. The returned poller reports each pass on Results.
func (a *App) StartShareIntake() (*share.Poller, error) {
	if a.poller != nil {
		return a.poller, nil
	}
	inbox, err := a.ShareInbox()
	if err != nil {
		return nil, err
	}
	a.poller = a.NewSharePoller(inbox)
	a.poller.Start()
	return a.poller, nil
}
