package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"
)

// ErrChatNotFound is returned when an operation targets an unknown chat.
var ErrChatNotFound = errors.New("chat not found")

// Engine owns the in-memory collection of chats and their queries. All
// mutations happen inside a single critical section, so no reader ever
// observes a reconciliation halfway through. Reads hand out snapshots.
type Engine struct {
	repository Repository

	mu       sync.Mutex
	chats    map[string]*Chat
	tempChat *Chat
	// cursors holds the next page to fetch, per chat.
	cursors        map[string]int
	lastUsedChatID string
	loadingChats   bool
	cancelSend     context.CancelFunc
}

// New instantiates an engine over the given repository.
func New(repository Repository) *Engine {
	return &Engine{
		repository: repository,
		chats:      map[string]*Chat{},
		cursors:    map[string]int{},
	}
}

// LoadChats fetches the chat list and merges it additively into the
// in-memory map. A call made while another load is in flight returns
// immediately without issuing a duplicate request.
func (e *Engine) LoadChats(ctx context.Context) error {
	e.mu.Lock()
	if e.loadingChats {
		e.mu.Unlock()
		return nil
	}
	e.loadingChats = true
	e.mu.Unlock()

	chats, err := e.repository.ListChats(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadingChats = false
	if err != nil {
		return errors.Wrap(err, "listing chats")
	}
	for _, chat := range chats {
		existing, ok := e.chats[chat.ID]
		if ok && len(chat.Queries) == 0 {
			// The list endpoint carries no queries; keep the loaded window.
			chat.Queries = existing.Queries
		}
		e.chats[chat.ID] = chat
	}
	return nil
}

// RefreshChats fetches the chat list and replaces the in-memory map
// wholesale. Used when the caller knows local state may be stale.
func (e *Engine) RefreshChats(ctx context.Context) error {
	chats, err := e.repository.ListChats(ctx)
	if err != nil {
		return errors.Wrap(err, "listing chats")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.chats = make(map[string]*Chat, len(chats))
	for _, chat := range chats {
		e.chats[chat.ID] = chat
	}
	e.cursors = map[string]int{}
	return nil
}

// DeleteChat deletes a chat on the server, then removes it locally. A
// failed delete leaves the map untouched.
func (e *Engine) DeleteChat(ctx context.Context, id string) error {
	if err := e.repository.DeleteChat(ctx, id); err != nil {
		return errors.Wrap(err, "deleting chat")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.chats, id)
	delete(e.cursors, id)
	if e.lastUsedChatID == id {
		e.lastUsedChatID = ""
	}
	return nil
}

// CreateChat starts a new conversation. The message becomes visible
// immediately as the pending query of the temp chat; once the server
// returns a chat id the temp chat is cleared and the persisted chat is
// installed. Returns the new chat's id, or "" on a degraded success.
func (e *Engine) CreateChat(ctx context.Context, request *SendRequest) (string, error) {
	now := time.Now()
	dummy := newPendingQuery("", request.Message)

	e.mu.Lock()
	e.tempChat = &Chat{
		Title:        request.Message,
		CreatedAt:    now,
		UpdatedAt:    now,
		TotalQueries: 1,
		Queries:      []*Query{dummy},
	}
	e.mu.Unlock()

	result, err := e.repository.CreateChat(ctx, request)
	if err != nil {
		e.mu.Lock()
		if e.tempChat != nil {
			e.tempChat.Queries = []*Query{failedFrom(dummy, err)}
		}
		e.mu.Unlock()
		return "", errors.Wrap(err, "creating chat")
	}

	if result == nil || result.ChatID == "" {
		// Degraded success: accepted, but no coherent id to target.
		e.mu.Lock()
		e.tempChat = nil
		e.mu.Unlock()
		if err := e.RefreshChats(ctx); err != nil {
			return "", err
		}
		return "", nil
	}

	chat, err := e.repository.GetChat(ctx, result.ChatID)
	if err != nil {
		// Hydration failed; install a minimal chat around the result.
		chat = &Chat{
			ID:           result.ChatID,
			Title:        request.Message,
			CreatedAt:    now,
			UpdatedAt:    now,
			TotalQueries: 1,
			Queries:      []*Query{result},
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.tempChat = nil
	chat.Queries = dedupe(chat.Queries)
	e.chats[chat.ID] = chat
	e.cursors[chat.ID] = 1
	return chat.ID, nil
}

// SendQuery sends a message into an existing chat. A pending placeholder
// is appended immediately and later replaced, in a single state update, by
// the server outcome or by a failed query carrying the error.
func (e *Engine) SendQuery(ctx context.Context, request *SendRequest) error {
	e.mu.Lock()
	chat, ok := e.chats[request.ChatID]
	if !ok {
		e.mu.Unlock()
		return errors.Wrapf(ErrChatNotFound, "chat %s", request.ChatID)
	}
	e.lastUsedChatID = request.ChatID
	dummy := newPendingQuery(request.ChatID, request.Message)
	before := len(chat.Queries)
	chat.Queries = dedupe(append(chat.Queries, dummy))
	if request.SyncCounts {
		chat.TotalQueries += len(chat.Queries) - before
	}

	sendCtx, cancel := context.WithCancel(ctx)
	e.cancelSend = cancel
	e.mu.Unlock()
	defer cancel()

	result, err := e.repository.SendQuery(sendCtx, request)

	e.mu.Lock()
	defer e.mu.Unlock()
	// Cleared on every exit path so an abort cannot target a stale chat.
	e.lastUsedChatID = ""
	e.cancelSend = nil

	// A RefreshChats may have replaced the map while the call was in
	// flight; reconcile against the entry currently installed.
	chat, ok = e.chats[request.ChatID]
	if !ok {
		if err != nil {
			return errors.Wrap(err, "sending query")
		}
		return nil
	}

	if err != nil {
		e.replaceQuery(chat, dummy.ID, failedFrom(dummy, err))
		return errors.Wrap(err, "sending query")
	}
	if result == nil {
		// Silent no-op from the lower layer; the dummy remains until a
		// subsequent load overwrites it.
		return nil
	}
	e.replaceQuery(chat, dummy.ID, result)
	chat.UpdatedAt = time.Now()
	return nil
}

// replaceQuery pops the placeholder and pushes its outcome. Both happen
// under the lock held by the caller: no intermediate state is observable.
// If an abort already removed the placeholder, the outcome is dropped.
func (e *Engine) replaceQuery(chat *Chat, placeholderID string, outcome *Query) {
	for i := len(chat.Queries) - 1; i >= 0; i-- {
		if chat.Queries[i].ID != placeholderID {
			continue
		}
		queries := make([]*Query, 0, len(chat.Queries))
		queries = append(queries, chat.Queries[:i]...)
		queries = append(queries, outcome)
		queries = append(queries, chat.Queries[i+1:]...)
		chat.Queries = dedupe(queries)
		return
	}
}

// LoadChatQueries fetches the next page of a chat's history and merges it
// into the loaded window. The cursor advances before the network call so a
// concurrent call fetches the following page instead of repeating this one.
func (e *Engine) LoadChatQueries(ctx context.Context, chatID string) error {
	e.mu.Lock()
	if _, ok := e.chats[chatID]; !ok {
		e.mu.Unlock()
		return errors.Wrapf(ErrChatNotFound, "chat %s", chatID)
	}
	page := e.cursors[chatID]
	if page == 0 {
		page = 1
	}
	e.cursors[chatID] = page + 1
	e.mu.Unlock()

	queries, err := e.repository.ListChatQueries(ctx, chatID, page)
	if err != nil {
		return errors.Wrapf(err, "listing queries page %d", page)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	chat, ok := e.chats[chatID]
	if !ok {
		return nil
	}
	// History merges never perturb TotalQueries.
	chat.Queries = dedupe(append(chat.Queries, queries...))
	return nil
}

// ResetCursor rewinds a chat's pagination to the first page, for when a
// chat is freshly opened.
func (e *Engine) ResetCursor(chatID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursors[chatID] = 1
}

// AbortLastQuery abandons the in-flight query. A temp chat is discarded
// outright; otherwise the last-used chat loses its most recent entry. The
// outstanding transport request is cancelled best effort.
func (e *Engine) AbortLastQuery() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tempChat != nil {
		// Client-side abandonment only; the create request itself is not
		// cancelled.
		e.tempChat = nil
		return
	}
	if e.lastUsedChatID != "" {
		if chat, ok := e.chats[e.lastUsedChatID]; ok && len(chat.Queries) > 0 {
			chat.Queries = chat.Queries[:len(chat.Queries)-1]
		}
		e.lastUsedChatID = ""
	}
	if e.cancelSend != nil {
		e.cancelSend()
		e.cancelSend = nil
	}
}

// Chats returns a snapshot of all chats, most recently updated first.
func (e *Engine) Chats() []*Chat {
	e.mu.Lock()
	defer e.mu.Unlock()
	chats := make([]*Chat, 0, len(e.chats))
	for _, chat := range e.chats {
		chats = append(chats, copyChat(chat))
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	return chats
}

// Chat returns a snapshot of one chat.
func (e *Engine) Chat(id string) (*Chat, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	chat, ok := e.chats[id]
	if !ok {
		return nil, false
	}
	return copyChat(chat), true
}

// TempChat returns a snapshot of the not-yet-persisted chat, or nil.
func (e *Engine) TempChat() *Chat {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tempChat == nil {
		return nil
	}
	return copyChat(e.tempChat)
}

// dedupe keeps the first occurrence of each query id, preserving order.
func dedupe(queries []*Query) []*Query {
	seen := strset.NewWithSize(len(queries))
	deduped := queries[:0]
	for _, query := range queries {
		if seen.Has(query.ID) {
			continue
		}
		seen.Add(query.ID)
		deduped = append(deduped, query)
	}
	return deduped
}
