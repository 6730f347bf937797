// Package fanout implements the Multi-Recipient Fan-Out (C7): resolve
// conversation participants, encrypt once per recipient via pkg/cipher,
// and aggregate outcomes under a partial-failure policy. Per-recipient
// encryption is parallelized with a bounded worker pool, grounded on the
// teacher's pkg/tunnel/pool.go pattern of mutex-guarded shared state
// behind a fixed-size resource limit — adapted here from pooling
// connections to pooling concurrent encrypt calls.
package fanout

import (
	"context"
	"sync"

	"github.com/qryptchat/pq-engine/internal/obslog"
	"github.com/qryptchat/pq-engine/internal/qerrors"
	"github.com/qryptchat/pq-engine/pkg/cipher"
)

// defaultWorkers bounds fan-out concurrency when the caller does not
// override it via WithWorkers.
const defaultWorkers = 8

// ParticipantDirectory is the external collaborator the engine queries for
// recipient public keys (spec §6). Results are treated as untrusted input
// and routed through pkg/pubkey by pkg/cipher.
type ParticipantDirectory interface {
	GetParticipants(ctx context.Context, conversationID string) (map[string]string, error)
	GetUserPublicKey(ctx context.Context, recipientID string) (string, bool, error)
}

// StaticDirectory is an in-memory ParticipantDirectory, for tests and for
// embedding the engine in a process that resolves participants some other
// way (e.g. from an already-loaded roster).
type StaticDirectory struct {
	mu            sync.RWMutex
	conversations map[string]map[string]string // conversationID -> recipientID -> pk_b64
	users         map[string]string            // recipientID -> pk_b64
}

// NewStaticDirectory returns an empty StaticDirectory.
func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{
		conversations: make(map[string]map[string]string),
		users:         make(map[string]string),
	}
}

// SetConversation registers the participant set for conversationID.
func (d *StaticDirectory) SetConversation(conversationID string, participants map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make(map[string]string, len(participants))
	for k, v := range participants {
		cp[k] = v
	}
	d.conversations[conversationID] = cp
}

// SetUserPublicKey registers a single user's public key, independent of
// any conversation membership.
func (d *StaticDirectory) SetUserPublicKey(recipientID, pkB64 string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[recipientID] = pkB64
}

// GetParticipants implements ParticipantDirectory.
func (d *StaticDirectory) GetParticipants(_ context.Context, conversationID string) (map[string]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out, ok := d.conversations[conversationID]
	if !ok {
		return nil, nil
	}
	cp := make(map[string]string, len(out))
	for k, v := range out {
		cp[k] = v
	}
	return cp, nil
}

// GetUserPublicKey implements ParticipantDirectory.
func (d *StaticDirectory) GetUserPublicKey(_ context.Context, recipientID string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	pk, ok := d.users[recipientID]
	return pk, ok, nil
}

// FailureEntry is one recipient's failed-encryption ledger record.
type FailureEntry struct {
	RecipientID string
	Kind        qerrors.Kind
	Detail      string
}

// Result is the outcome of a fan-out call: a success map plus a failure
// ledger that never aborts the whole call on its own (spec §4.7).
type Result struct {
	Envelopes map[string]string
	Failures  []FailureEntry
}

// Option configures a fan-out call.
type Option func(*options)

type options struct {
	workers              int
	allowNearSizePadding bool
	log                  *obslog.Logger
}

// WithWorkers overrides the bounded worker-pool size.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithNearSizePadding toggles the C4 near-size padding hazard flag.
func WithNearSizePadding(allow bool) Option {
	return func(o *options) { o.allowNearSizePadding = allow }
}

// WithLogger sets the logger used for per-recipient diagnostics.
func WithLogger(log *obslog.Logger) Option {
	return func(o *options) { o.log = log }
}

func newOptions(opts []Option) *options {
	o := &options{workers: defaultWorkers, allowNearSizePadding: true, log: obslog.Null()}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = obslog.Null()
	}
	return o
}

// EncryptForConversation resolves participants via dir and encrypts
// plaintext for each, in parallel, aggregating outcomes per spec §4.7.
func EncryptForConversation(ctx context.Context, dir ParticipantDirectory, conversationID, plaintext string, opts ...Option) (Result, error) {
	participants, err := dir.GetParticipants(ctx, conversationID)
	if err != nil {
		return Result{}, qerrors.Wrap(qerrors.KindNoParticipants, "fanout.EncryptForConversation", err)
	}
	if len(participants) == 0 {
		return Result{}, qerrors.New(qerrors.KindNoParticipants, "fanout.EncryptForConversation", "conversation has no participants")
	}
	return encryptMap(ctx, participants, plaintext, opts...)
}

// EncryptForRecipients encrypts plaintext for an explicit recipient set,
// querying dir once per recipient for its public key.
func EncryptForRecipients(ctx context.Context, dir ParticipantDirectory, plaintext string, recipientIDs []string, opts ...Option) (Result, error) {
	if len(recipientIDs) == 0 {
		return Result{}, qerrors.New(qerrors.KindNoParticipants, "fanout.EncryptForRecipients", "no recipients provided")
	}

	participants := make(map[string]string, len(recipientIDs))
	var failures []FailureEntry
	for _, id := range recipientIDs {
		pk, ok, err := dir.GetUserPublicKey(ctx, id)
		if err != nil || !ok {
			failures = append(failures, FailureEntry{RecipientID: id, Kind: qerrors.KindInvalidPublicKey, Detail: "recipient has no published public key"})
			continue
		}
		participants[id] = pk
	}

	result, err := encryptMap(ctx, participants, plaintext, opts...)
	result.Failures = append(result.Failures, failures...)
	if err != nil {
		return result, err
	}
	if len(result.Envelopes) == 0 {
		return result, classifyAllFailed(result.Failures)
	}
	return result, nil
}

// DecryptForCurrentUser is a thin wrapper over cipher.Decrypt.
// senderPKB64 is informational per spec §4.7 and is not used to derive
// any authentication in this scheme.
func DecryptForCurrentUser(ctx context.Context, envelopeStr string, _ string, keys cipher.PrivateKeyLookup, log *obslog.Logger) string {
	return cipher.Decrypt(ctx, envelopeStr, keys, log)
}

func encryptMap(ctx context.Context, participants map[string]string, plaintext string, opts ...Option) (result Result, err error) {
	o := newOptions(opts)

	ctx, endSpan := obslog.GetTracer().StartSpan(ctx, "fanout.encryptMap", map[string]interface{}{
		"recipients": len(participants),
		"workers":    o.workers,
	})
	defer func() { endSpan(err) }()

	type item struct {
		id string
		pk string
	}
	items := make([]item, 0, len(participants))
	for id, pk := range participants {
		items = append(items, item{id: id, pk: pk})
	}

	result = Result{Envelopes: make(map[string]string, len(items))}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, o.workers)

	for _, it := range items {
		select {
		case <-ctx.Done():
			mu.Lock()
			result.Failures = append(result.Failures, FailureEntry{RecipientID: it.id, Kind: qerrors.KindEncryption, Detail: ctx.Err().Error()})
			mu.Unlock()
			continue
		default:
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(it item) {
			defer wg.Done()
			defer func() { <-sem }()

			env, err := cipher.EncryptFor(ctx, it.pk, plaintext, o.allowNearSizePadding, o.log)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				kind, _ := qerrors.As(err)
				result.Failures = append(result.Failures, FailureEntry{RecipientID: it.id, Kind: kind})
				return
			}
			result.Envelopes[it.id] = env
		}(it)
	}

	wg.Wait()

	if len(result.Envelopes) == 0 {
		err = classifyAllFailed(result.Failures)
		return result, err
	}
	return result, nil
}

// classifyAllFailed implements spec §4.7 step 4: raise AllRecipientsIncompatible
// if any failure is IncompatibleKey, else AllRecipientsFailed.
func classifyAllFailed(failures []FailureEntry) error {
	if len(failures) == 0 {
		return qerrors.New(qerrors.KindNoParticipants, "fanout", "no recipients to encrypt for")
	}
	for _, f := range failures {
		if f.Kind == qerrors.KindIncompatibleKey {
			ids := make([]string, 0, len(failures))
			for _, f2 := range failures {
				if f2.Kind == qerrors.KindIncompatibleKey {
					ids = append(ids, f2.RecipientID)
				}
			}
			return qerrors.New(qerrors.KindAllRecipientsIncompatible, "fanout", "all recipients had incompatible keys: "+joinIDs(ids))
		}
	}
	return qerrors.New(qerrors.KindAllRecipientsFailed, "fanout", "all recipients failed")
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += id
	}
	return out
}
