package share

import (
	"bytes"
	"context"
	"fmt"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/sirupsen/logrus"

	"github.com/nhle/followup/internal/engine"
	"github.com/nhle/followup/internal/logging"
	"github.com/nhle/followup/internal/model"
)

// Item is one shared message fetched from the inbox. Err is set when the
// message could not be parsed; such items carry a zero Input.
type Item struct {
	UID       uint32
	MessageID string
	Input     engine.CreateInput
	Err       error
}

// Inbox reads shared items from an IMAP mailbox using go-imap v2.
type Inbox struct {
	host     string
	port     string
	username string
	password string
	tls      bool
	mailbox  string
	log      logrus.FieldLogger
}

// InboxOption configures an Inbox.
type InboxOption func(*Inbox)

// WithInboxLogger sets the logger used for skipped messages.
func WithInboxLogger(l logrus.FieldLogger) InboxOption {
	return func(in *Inbox) { in.log = logging.Component(l, "share") }
}

// NewInbox creates an inbox for the configured mailbox. The password is
// supplied separately since it is kept in the keyring.
func NewInbox(cfg model.ShareConfig, password string, opts ...InboxOption) *Inbox {
	mailbox := cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	in := &Inbox{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: password,
		tls:      cfg.TLS,
		mailbox:  mailbox,
		log:      logging.Component(nil, "share"),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Addr returns the host:port the inbox dials.
func (in *Inbox) Addr() string {
	return in.host + ":" + in.port
}

// connect dials, authenticates and selects the mailbox. The caller must
// log out of the returned client.
func (in *Inbox) connect(ctx context.Context) (*imapclient.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addr := in.Addr()

	var client *imapclient.Client
	var err error
	if in.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(in.username, in.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("authenticating %s: %w", in.username, err)
	}

	if _, err := client.Select(in.mailbox, nil).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("selecting %s: %w", in.mailbox, err)
	}

	return client, nil
}

// Fetch returns up to limit unseen messages, oldest first, without
// changing their flags. limit <= 0 fetches all of them.
func (in *Inbox) Fetch(ctx context.Context, limit int) ([]Item, error) {
	client, err := in.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}
	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching unseen messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	if limit > 0 && len(uids) > limit {
		uids = uids[:limit]
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), fetchOpts)
	defer fetchCmd.Close()

	var items []Item
	for {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			in.log.WithError(err).Warn("collecting shared message")
			continue
		}

		item := Item{UID: uint32(buf.UID)}
		if buf.Envelope != nil {
			item.MessageID = buf.Envelope.MessageID
		}

		raw := buf.FindBodySection(bodySection)
		if raw == nil {
			item.Err = fmt.Errorf("message UID %d has no body", item.UID)
		} else if item.Input, err = ParseMessage(bytes.NewReader(raw)); err != nil {
			item.Err = err
		}
		if item.Err != nil {
			in.log.WithError(item.Err).WithField("uid", item.UID).Warn("skipping shared message")
		}

		items = append(items, item)
	}

	if err := fetchCmd.Close(); err != nil {
		return items, fmt.Errorf("fetching shared messages: %w", err)
	}

	return items, nil
}

// MarkSeen flags the given messages \Seen so they are not fetched again.
func (in *Inbox) MarkSeen(ctx context.Context, uids []uint32) error {
	if len(uids) == 0 {
		return nil
	}

	client, err := in.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout().Wait() }()

	set := make([]imap.UID, len(uids))
	for i, u := range uids {
		set[i] = imap.UID(u)
	}

	storeCmd := client.Store(imap.UIDSetNum(set...), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	if err := storeCmd.Close(); err != nil {
		return fmt.Errorf("marking %d messages seen: %w", len(uids), err)
	}
	return nil
}
