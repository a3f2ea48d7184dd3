package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/authsdk"
	"github.com/aussiebroadwan/tabsession/pkg/clockx"
	"github.com/aussiebroadwan/tabsession/pkg/cryptox"
	"github.com/aussiebroadwan/tabsession/pkg/idx"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
	"golang.org/x/sync/singleflight"
)

const (
	storageTimeout = 5 * time.Second
	revokeTimeout  = 5 * time.Second
)

// Manager is the session state machine. Transitions are processed one at a
// time by a single goroutine started with Start; timers, network
// completions and the exported methods all post messages to it. Reads
// (Snapshot, CurrentAccessToken) use an atomically published view and
// never block.
type Manager struct {
	authority Authority
	clock     clockx.Clock
	logger    *slog.Logger
	decoder   jwtx.Decoder
	persister Persister
	observers []Observer

	refreshMargin      time.Duration
	clockSkew          time.Duration
	inactivityTimeout  time.Duration
	refreshRetries     int
	refreshBackoff     time.Duration
	postLogoutRedirect string

	msgs     chan envelope
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  atomic.Bool
	stopOnce sync.Once

	// ctx is cancelled when the loop exits.
	ctx    context.Context
	cancel context.CancelFunc

	current atomic.Pointer[view]

	// Owned by the manager goroutine.
	state      State
	reason     Reason
	sessionID  idx.ID
	sessCtx    context.Context
	sessCancel context.CancelFunc
	pending    *pendingLogin
	tokens     *tokenController
	monitor    *inactivityMonitor
	profile    jwtx.Profile
	roles      jwtx.RoleSet
}

type pendingLogin struct {
	id         idx.ID
	state      string
	pkce       *authsdk.PKCEChallenge
	returnTo   string
	exchanging bool
	reply      chan any
}

// New creates a Manager in Unauthenticated. Call Start before use.
func New(authority Authority, opts ...Option) (*Manager, error) {
	if authority == nil {
		return nil, errors.New("session: authority is required")
	}

	m := &Manager{
		authority:         authority,
		clock:             clockx.System,
		logger:            slog.Default(),
		decoder:           jwtx.UnverifiedDecoder{},
		refreshMargin:     DefaultRefreshMargin,
		clockSkew:         DefaultClockSkew,
		inactivityTimeout: DefaultInactivityTimeout,
		refreshRetries:    DefaultRefreshRetries,
		refreshBackoff:    DefaultRefreshBackoff,
		msgs:              make(chan envelope),
		stopCh:            make(chan struct{}),
		doneCh:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	switch {
	case m.refreshMargin < 0, m.clockSkew < 0, m.refreshBackoff < 0, m.refreshRetries < 0:
		return nil, errors.New("session: durations and retries must not be negative")
	case m.inactivityTimeout <= 0:
		return nil, errors.New("session: inactivity timeout must be positive")
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.tokens = &tokenController{
		clock:   m.clock,
		margin:  m.refreshMargin,
		retries: m.refreshRetries,
		backoff: m.refreshBackoff,
	}
	m.monitor = newInactivityMonitor(m.clock, m.inactivityTimeout)
	m.publish()
	return m, nil
}

// Start restores a persisted session, if any, and starts the transition
// goroutine. Call Stop to shut it down.
func (m *Manager) Start(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return errors.New("session: manager already started")
	}
	m.restore(ctx)
	go m.run()
	m.logger.Info("session manager started",
		"refresh_margin", m.refreshMargin,
		"inactivity_timeout", m.inactivityTimeout,
	)
	return nil
}

// Stop shuts down the transition goroutine and cancels in-flight network
// calls. The persisted session is kept.
func (m *Manager) Stop() {
	if !m.started.Load() {
		return
	}
	m.stopOnce.Do(func() {
		close(m.stopCh)
		<-m.doneCh
		m.logger.Info("session manager stopped")
	})
}

// Running reports ErrNotStarted or ErrStopped when the transition goroutine
// is not accepting messages.
func (m *Manager) Running() error {
	if !m.started.Load() {
		return ErrNotStarted
	}
	select {
	case <-m.doneCh:
		return ErrStopped
	default:
		return nil
	}
}

func (m *Manager) run() {
	defer close(m.doneCh)
	defer m.cancel()

	for {
		select {
		case env := <-m.msgs:
			m.handle(env)
		case <-m.stopCh:
			m.shutdown()
			return
		}
	}
}

func (m *Manager) shutdown() {
	m.monitor.stop()
	m.tokens.cancelTimer()
	if m.sessCancel != nil {
		m.sessCancel()
	}
	if p := m.pending; p != nil && p.reply != nil {
		p.reply <- callbackReply{err: ErrStopped}
	}
}

// ============================================================================
// Public operations
// ============================================================================

// Login starts an authorization attempt and returns the URL to redirect
// the browser to. returnTo is where CompleteLogin sends the user back;
// anything but a same-origin relative path is replaced by "/". An
// authenticated session is left alone and the sanitized returnTo is
// returned instead, so a stray login link cannot end it; Logout is the only
// way out.
func (m *Manager) Login(ctx context.Context, returnTo string) (string, error) {
	r, err := request[loginReply](ctx, m, loginMsg{returnTo: returnTo})
	if err != nil {
		return "", err
	}
	return r.url, r.err
}

// CompleteLogin consumes the authorization response query and, on success,
// returns the destination saved by Login. Failures are
// *AuthorizationFailure and leave the session Unauthenticated.
func (m *Manager) CompleteLogin(ctx context.Context, query url.Values) (string, error) {
	r, err := request[callbackReply](ctx, m, callbackMsg{query: query})
	if err != nil {
		return "", err
	}
	return r.returnTo, r.err
}

// Logout ends the session and returns the authority end-session URL ("" if
// there is none or nobody was logged in). The refresh token is revoked in
// the background.
func (m *Manager) Logout(ctx context.Context) (string, error) {
	r, err := request[logoutReply](ctx, m, logoutMsg{})
	if err != nil {
		return "", err
	}
	return r.url, nil
}

// Observe returns the current snapshot and acknowledges its notice: a
// LoggedOut session is reset to Unauthenticated and a failed login's notice
// is cleared, so each notice is shown once.
func (m *Manager) Observe(ctx context.Context) (Snapshot, error) {
	return request[Snapshot](ctx, m, observeMsg{})
}

// Snapshot returns the current state without blocking. The Roles map must
// not be modified.
func (m *Manager) Snapshot() Snapshot {
	snap := m.current.Load().snap
	if snap.State == Authenticated {
		snap.ActivityDeadline = m.monitor.deadline()
	}
	return snap
}

// CurrentAccessToken returns the access token if it is valid for at least
// the clock skew tolerance, otherwise ErrAuthRequired. It never blocks.
func (m *Manager) CurrentAccessToken() (string, error) {
	v := m.current.Load()
	if v.snap.State != Authenticated || v.pair == nil {
		return "", ErrAuthRequired
	}
	if !m.clock.Now().Before(v.pair.AccessExpiry.Add(-m.clockSkew)) {
		return "", ErrAuthRequired
	}
	return v.pair.AccessToken, nil
}

// AccessToken is the blocking variant of CurrentAccessToken: inside the
// refresh margin it joins (or starts) the single in-flight refresh and
// returns its result.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	v := m.current.Load()
	if v.snap.State != Authenticated || v.pair == nil {
		return "", ErrAuthRequired
	}
	now := m.clock.Now()
	if !v.pair.canRefresh(now) {
		return m.CurrentAccessToken()
	}
	if now.Before(v.refreshAt) {
		return v.pair.AccessToken, nil
	}

	r, err := request[refreshNowReply](ctx, m, refreshNowMsg{})
	if err != nil {
		return "", err
	}
	if r.wait == nil {
		return r.token, r.err
	}

	select {
	case res := <-r.wait:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// RecordActivity registers a user interaction. It reports whether the
// event counted: only qualifying kinds count, and only while a session is
// being monitored.
func (m *Manager) RecordActivity(kind EventKind) bool {
	if _, ok := ParseEventKind(string(kind)); !ok {
		return false
	}
	return m.monitor.touch()
}

// ============================================================================
// Messages
// ============================================================================

type envelope struct {
	msg   any
	reply chan any
}

type (
	loginMsg         struct{ returnTo string }
	callbackMsg      struct{ query url.Values }
	logoutMsg        struct{}
	observeMsg       struct{}
	refreshNowMsg    struct{}
	refreshDueMsg    struct{ id idx.ID }
	accessExpiredMsg struct{ id idx.ID }
	inactivityMsg    struct {
		id  idx.ID
		gen uint64
	}
	exchangeDoneMsg struct {
		id   idx.ID
		resp *authsdk.TokenResponse
		err  error
		at   time.Time
	}
	refreshDoneMsg struct {
		id       idx.ID
		resp     *authsdk.TokenResponse
		attempts int
		err      error
		at       time.Time
	}
)

type (
	loginReply struct {
		url string
		err error
	}
	callbackReply struct {
		returnTo string
		err      error
	}
	logoutReply     struct{ url string }
	refreshNowReply struct {
		token string
		err   error
		wait  <-chan singleflight.Result
	}
)

// call posts msg and waits for the loop's reply.
func (m *Manager) call(ctx context.Context, msg any) (any, error) {
	if !m.started.Load() {
		return nil, ErrNotStarted
	}

	env := envelope{msg: msg, reply: make(chan any, 1)}
	select {
	case m.msgs <- env:
	case <-m.doneCh:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-env.reply:
		return r, nil
	case <-m.doneCh:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func request[T any](ctx context.Context, m *Manager, msg any) (T, error) {
	var zero T
	r, err := m.call(ctx, msg)
	if err != nil {
		return zero, err
	}
	return r.(T), nil
}

// post delivers a timer or completion message and waits until it has been
// processed.
func (m *Manager) post(msg any) {
	_, _ = m.call(context.Background(), msg)
}

func (m *Manager) handle(env envelope) {
	switch msg := env.msg.(type) {
	case loginMsg:
		env.reply <- m.onLogin(msg)
	case callbackMsg:
		m.onCallback(msg, env.reply)
	case exchangeDoneMsg:
		m.onExchangeDone(msg)
		env.reply <- struct{}{}
	case refreshDueMsg:
		m.onRefreshDue(msg)
		env.reply <- struct{}{}
	case refreshNowMsg:
		env.reply <- m.onRefreshNow()
	case refreshDoneMsg:
		env.reply <- m.onRefreshDone(msg)
	case accessExpiredMsg:
		m.onAccessExpired(msg)
		env.reply <- struct{}{}
	case inactivityMsg:
		m.onInactivity(msg)
		env.reply <- struct{}{}
	case logoutMsg:
		env.reply <- m.onLogout()
	case observeMsg:
		env.reply <- m.onObserve()
	default:
		panic(fmt.Sprintf("session: unknown message %T", msg))
	}
}

// ============================================================================
// Transitions
// ============================================================================

func (m *Manager) onLogin(msg loginMsg) loginReply {
	if m.state == Authenticated {
		return loginReply{url: SanitizeReturnTo(msg.returnTo)}
	}
	if m.state == LoggedOut {
		m.transition(Unauthenticated, ReasonReset, nil)
	}
	if p := m.pending; p != nil && p.reply != nil {
		p.reply <- callbackReply{err: &AuthorizationFailure{Reason: "superseded by a new login"}}
	}

	pkce, err := authsdk.GeneratePKCEChallenge()
	if err != nil {
		return loginReply{err: fmt.Errorf("session: start login: %w", err)}
	}
	state, err := authsdk.GenerateState()
	if err != nil {
		return loginReply{err: fmt.Errorf("session: start login: %w", err)}
	}

	m.pending = &pendingLogin{
		id:       idx.NewAt(m.clock.Now()),
		state:    state,
		pkce:     pkce,
		returnTo: SanitizeReturnTo(msg.returnTo),
	}
	m.transition(Authenticating, ReasonLoginStarted, nil)
	return loginReply{url: m.authority.BuildAuthorizeURL(state, pkce)}
}

func (m *Manager) onCallback(msg callbackMsg, reply chan any) {
	p := m.pending
	if m.state != Authenticating || p == nil {
		reply <- callbackReply{err: &AuthorizationFailure{Reason: "no login in progress"}}
		return
	}
	if p.exchanging {
		reply <- callbackReply{err: &AuthorizationFailure{Reason: "login is already completing"}}
		return
	}

	cb, err := authsdk.ParseCallbackQuery(msg.query)
	if subtle.ConstantTimeCompare([]byte(cb.State), []byte(p.state)) != 1 {
		m.failLogin(reply, &AuthorizationFailure{Reason: "state mismatch"})
		return
	}
	if err != nil {
		m.failLogin(reply, &AuthorizationFailure{Reason: "authority rejected the login", Err: err})
		return
	}

	p.exchanging = true
	p.reply = reply
	go m.exchange(p.id, cb.Code, p.pkce.Verifier)
}

func (m *Manager) exchange(id idx.ID, code, verifier string) {
	resp, err := m.authority.ExchangeCode(m.ctx, code, verifier)
	m.post(exchangeDoneMsg{id: id, resp: resp, err: err, at: m.clock.Now()})
}

func (m *Manager) onExchangeDone(msg exchangeDoneMsg) {
	p := m.pending
	if m.state != Authenticating || p == nil || p.id != msg.id {
		m.logger.Debug("discarding stale code exchange", "attempt_id", msg.id)
		return
	}
	if msg.err != nil {
		m.failLogin(p.reply, &AuthorizationFailure{Reason: "code exchange failed", Err: msg.err})
		return
	}

	pair := pairFrom(msg.resp, msg.at, nil)
	profile, roles, err := m.claims(m.decoder, pair)
	if err != nil {
		m.failLogin(p.reply, &AuthorizationFailure{Reason: "token rejected", Err: err})
		return
	}

	m.pending = nil
	m.begin(p.id, pair, profile, roles, ReasonLoggedIn)
	p.reply <- callbackReply{returnTo: p.returnTo}
}

func (m *Manager) failLogin(reply chan any, failure *AuthorizationFailure) {
	m.pending = nil
	m.transition(Unauthenticated, ReasonLoginFailed, failure)
	if reply != nil {
		reply <- callbackReply{err: failure}
	}
}

// begin enters Authenticated with a fresh pair.
func (m *Manager) begin(id idx.ID, pair *TokenPair, profile jwtx.Profile, roles jwtx.RoleSet, reason Reason) {
	m.sessionID = id
	m.sessCtx, m.sessCancel = context.WithCancel(m.ctx)
	m.profile, m.roles = profile, roles

	m.monitor.start(m.clock.Now(), m.inactivityFire(id))
	m.transition(Authenticated, reason, nil)
	m.storePair(pair, false)
	m.publish()
}

func (m *Manager) storePair(pair *TokenPair, renewed bool) {
	id := m.sessionID
	next := m.tokens.store(pair, renewed,
		func() { m.post(refreshDueMsg{id: id}) },
		func() { m.post(accessExpiredMsg{id: id}) },
	)
	m.persist()

	switch next {
	case scheduleRefreshNow:
		m.logger.Debug("access token inside refresh margin, refreshing now", "session_id", id)
		m.startRefresh()
	case scheduleExpiry:
		m.logger.Debug("no usable refresh token, session ends at access expiry",
			"session_id", id, "access_expiry", pair.AccessExpiry)
	}
}

func (m *Manager) startRefresh() <-chan singleflight.Result {
	id := m.sessionID
	refreshToken := m.tokens.pair.RefreshToken
	ctx := m.sessionContext()

	return m.tokens.refresh(id, func() refreshOutcome {
		resp, attempts, err := m.tokens.exchange(ctx, m.authority, refreshToken,
			func(attempt int, wait time.Duration, err error) {
				m.logger.Warn("token refresh failed, retrying",
					"session_id", id, "attempt", attempt, "backoff", wait, "error", err)
			})

		r, cerr := m.call(context.Background(), refreshDoneMsg{
			id: id, resp: resp, attempts: attempts, err: err, at: m.clock.Now(),
		})
		if cerr != nil {
			return refreshOutcome{err: cerr}
		}
		return r.(refreshOutcome)
	})
}

func (m *Manager) onRefreshDue(msg refreshDueMsg) {
	if !m.owns(msg.id) {
		m.logger.Debug("discarding stale refresh timer", "session_id", msg.id)
		return
	}
	m.startRefresh()
}

func (m *Manager) onRefreshNow() refreshNowReply {
	if m.state != Authenticated || m.tokens.pair == nil {
		return refreshNowReply{err: ErrAuthRequired}
	}
	now := m.clock.Now()
	pair := m.tokens.pair
	if !pair.canRefresh(now) {
		if now.Before(pair.AccessExpiry.Add(-m.clockSkew)) {
			return refreshNowReply{token: pair.AccessToken}
		}
		return refreshNowReply{err: ErrAuthRequired}
	}
	if now.Before(m.tokens.refreshAt) {
		return refreshNowReply{token: pair.AccessToken}
	}
	return refreshNowReply{wait: m.startRefresh()}
}

func (m *Manager) onRefreshDone(msg refreshDoneMsg) refreshOutcome {
	if !m.owns(msg.id) {
		m.logger.Debug("discarding stale refresh result", "session_id", msg.id)
		return refreshOutcome{err: ErrAuthRequired}
	}
	if msg.err != nil {
		failure := &RefreshFailure{Attempts: msg.attempts, Err: msg.err}
		m.endSession(ReasonRefreshFailed, failure)
		return refreshOutcome{err: fmt.Errorf("%w: %w", ErrAuthRequired, failure)}
	}

	pair := pairFrom(msg.resp, msg.at, m.tokens.pair)
	profile, roles, err := m.claims(m.decoder, pair)
	if err != nil {
		failure := &RefreshFailure{Attempts: msg.attempts, Err: err}
		m.endSession(ReasonRefreshFailed, failure)
		return refreshOutcome{err: fmt.Errorf("%w: %w", ErrAuthRequired, failure)}
	}

	m.profile, m.roles = profile, roles
	m.storePair(pair, true)
	m.transition(Authenticated, ReasonRefreshed, nil)
	return refreshOutcome{token: pair.AccessToken}
}

func (m *Manager) onAccessExpired(msg accessExpiredMsg) {
	if !m.owns(msg.id) {
		return
	}
	m.endSession(ReasonTokenExpired, nil)
}

func (m *Manager) inactivityFire(id idx.ID) func(gen uint64) {
	return func(gen uint64) {
		m.post(inactivityMsg{id: id, gen: gen})
	}
}

func (m *Manager) onInactivity(msg inactivityMsg) {
	if !m.owns(msg.id) {
		return
	}
	if m.monitor.check(msg.gen, m.clock.Now(), m.inactivityFire(msg.id)) {
		m.endSession(ReasonInactivity, nil)
	}
}

func (m *Manager) onLogout() logoutReply {
	switch m.state {
	case Authenticated:
		pair := m.tokens.pair
		endURL := m.authority.BuildEndSessionURL(pair.IDToken, m.postLogoutRedirect)
		if pair.RefreshToken != "" {
			go m.revoke(m.sessionID, pair.RefreshToken)
		}
		m.endSession(ReasonLogout, nil)
		return logoutReply{url: endURL}

	case Authenticating:
		if p := m.pending; p != nil && p.reply != nil {
			p.reply <- callbackReply{err: &AuthorizationFailure{Reason: "login cancelled"}}
		}
		m.pending = nil
		m.transition(Unauthenticated, ReasonLogout, nil)
	}
	return logoutReply{}
}

func (m *Manager) revoke(id idx.ID, refreshToken string) {
	ctx, cancel := context.WithTimeout(m.ctx, revokeTimeout)
	defer cancel()

	log := m.logger.With("session_id", id, "token_fp", cryptox.FingerprintToken(refreshToken))
	err := m.authority.RevokeToken(ctx, refreshToken, "refresh_token")
	switch {
	case err == nil:
		log.Debug("refresh token revoked")
	case errors.Is(err, authsdk.ErrRevocationUnsupported):
		log.Debug("authority has no revocation endpoint")
	default:
		log.Warn("refresh token revocation failed", "error", err)
	}
}

func (m *Manager) onObserve() Snapshot {
	snap := m.Snapshot()
	switch {
	case m.state == LoggedOut:
		m.transition(Unauthenticated, ReasonReset, nil)
	case m.state == Unauthenticated && snap.Notice != "":
		// A failed login leaves no state change to make, only the notice.
		m.reason = ReasonReset
		m.publish()
	}
	return snap
}

// endSession tears down an authenticated session through Expiring into
// LoggedOut.
func (m *Manager) endSession(reason Reason, cause error) {
	m.transition(Expiring, reason, cause)

	m.monitor.stop()
	m.tokens.clear()
	if m.sessCancel != nil {
		m.sessCancel()
		m.sessCtx, m.sessCancel = nil, nil
	}
	m.profile, m.roles = jwtx.Profile{}, nil
	m.forget()

	m.transition(LoggedOut, reason, cause)
	m.sessionID = idx.Zero
	m.publish()
}

func (m *Manager) owns(id idx.ID) bool {
	return m.state == Authenticated && !id.IsZero() && id == m.sessionID
}

func (m *Manager) sessionContext() context.Context {
	if m.sessCancel == nil {
		return m.ctx
	}
	return m.sessCtx
}

func (m *Manager) transition(to State, reason Reason, cause error) {
	from := m.state
	m.state = to
	m.reason = reason
	m.publish()

	t := Transition{
		SessionID: m.sessionID,
		From:      from,
		To:        to,
		Reason:    reason,
		Err:       cause,
		At:        m.clock.Now(),
	}

	attrs := []any{"from", from, "to", to, "reason", reason}
	if !t.SessionID.IsZero() {
		attrs = append(attrs, "session_id", t.SessionID)
	}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	m.logger.Info("session transition", attrs...)

	for _, o := range m.observers {
		o.OnTransition(t)
	}
}

func (m *Manager) publish() {
	v := &view{snap: Snapshot{
		SessionID: m.sessionID,
		State:     m.state,
		Reason:    m.reason,
		Notice:    m.reason.Notice(),
	}}
	if m.state == Authenticated && m.tokens.pair != nil {
		v.pair = m.tokens.pair
		v.refreshAt = m.tokens.refreshAt
		v.snap.Profile = m.profile
		v.snap.Roles = m.roles
		v.snap.AccessExpiry = m.tokens.pair.AccessExpiry
	}
	if m.state == Authenticated {
		v.snap.Notice = ""
	}
	m.current.Store(v)
}

// ============================================================================
// Claims and persistence
// ============================================================================

// claims derives the profile and roles from the access token. Verification
// failures are returned. Unusable claims are not: the profile falls back to
// the ID token, then to an empty profile, and roles to the empty set.
func (m *Manager) claims(dec jwtx.Decoder, pair *TokenPair) (jwtx.Profile, jwtx.RoleSet, error) {
	clientID := m.authority.ClientID()

	payload, err := dec.Decode(pair.AccessToken)
	if err == nil {
		profile, roles, xerr := jwtx.Extract(payload, clientID)
		if xerr == nil {
			return profile, roles, nil
		}
		err = xerr
	} else if !errors.Is(err, jwtx.ErrMalformed) {
		return jwtx.Profile{}, nil, err
	}

	if pair.IDToken != "" {
		if idPayload, derr := dec.Decode(pair.IDToken); derr == nil {
			if profile, _, xerr := jwtx.Extract(idPayload, clientID); xerr == nil {
				m.logger.Warn("access token claims unusable, using ID token profile without roles", "error", err)
				return profile, jwtx.RoleSet{}, nil
			}
		}
	}
	m.logger.Warn("token claims unusable, continuing with an empty profile", "error", err)
	return jwtx.Profile{}, jwtx.RoleSet{}, nil
}

func pairFrom(resp *authsdk.TokenResponse, at time.Time, prev *TokenPair) *TokenPair {
	p := &TokenPair{
		AccessToken:   resp.AccessToken,
		RefreshToken:  resp.RefreshToken,
		IDToken:       resp.IDToken,
		AccessExpiry:  resp.AccessExpiry(at),
		RefreshExpiry: resp.RefreshExpiry(at),
	}
	if prev != nil {
		if p.RefreshToken == "" {
			p.RefreshToken, p.RefreshExpiry = prev.RefreshToken, prev.RefreshExpiry
		}
		if p.IDToken == "" {
			p.IDToken = prev.IDToken
		}
	}
	return p
}

// restore resumes a persisted session. Tokens in the record were accepted
// when they were saved, so their payload is read without verification.
func (m *Manager) restore(ctx context.Context) {
	if m.persister == nil {
		return
	}

	rec, err := m.persister.Load(ctx)
	switch {
	case errors.Is(err, ErrNoRecord):
		return
	case err != nil:
		m.logger.Warn("persisted session unreadable, discarding", "error", err)
		m.forget()
		return
	}

	now := m.clock.Now()
	pair := rec.Pair
	if !now.Before(pair.AccessExpiry.Add(-m.clockSkew)) && !pair.canRefresh(now) {
		m.logger.Info("persisted session expired, discarding", "session_id", rec.SessionID)
		m.forget()
		return
	}

	profile, roles, err := m.claims(jwtx.UnverifiedDecoder{}, &pair)
	if err != nil {
		m.logger.Warn("persisted session tokens unusable, discarding", "error", err)
		m.forget()
		return
	}

	id, err := idx.Parse(rec.SessionID.String())
	if err != nil || id.IsZero() {
		id = idx.NewAt(now)
	}
	m.begin(id, &pair, profile, roles, ReasonRestored)
}

func (m *Manager) persist() {
	if m.persister == nil || m.tokens.pair == nil {
		return
	}
	ctx, cancel := context.WithTimeout(m.ctx, storageTimeout)
	defer cancel()

	rec := &Record{SessionID: m.sessionID, Pair: *m.tokens.pair, SavedAt: m.clock.Now()}
	if err := m.persister.Save(ctx, rec); err != nil {
		m.logger.Error("failed to persist session", "session_id", m.sessionID, "error", err)
	}
}

func (m *Manager) forget() {
	if m.persister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(m.ctx, storageTimeout)
	defer cancel()

	if err := m.persister.Delete(ctx); err != nil {
		m.logger.Error("failed to delete persisted session", "error", err)
	}
}
