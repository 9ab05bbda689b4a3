package chat

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rechat/internal/crypto"
	"rechat/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

// Image extensions accepted by SendImage.
var imageExts = []string{".png", ".jpg", ".jpeg", ".bmp"}

var (
	// ErrNoConnection is returned when nothing can carry frames to the hub.
	ErrNoConnection = errors.New("connect to a host first")
	// ErrUnsupportedImage is returned for files outside the image filter.
	ErrUnsupportedImage = errors.New("unsupported image type (png, jpg, jpeg, bmp)")
	// ErrUnknownPeer is returned when targeting a name missing from the roster.
	ErrUnknownPeer = errors.New("no such peer in roster")
)

// ImageStore keeps received images.
type ImageStore interface {
	SaveImage(name string, data []byte) (string, error)
}

// Options configures optional Session behaviour.
type Options struct {
	Box      *crypto.RoomBox // seals outgoing and opens incoming content; nil sends plaintext
	Images   ImageStore      // where received images go; nil discards them
	Location *time.Location  // timestamps are printed in this zone; nil is time.Local
	Now      func() time.Time
	Log      zerolog.Logger
}

// Session is one peer's view of the chat.
type Session struct {
	self   domain.Identity
	out    io.Writer
	box    *crypto.RoomBox
	images ImageStore
	loc    *time.Location
	now    func() time.Time
	log    zerolog.Logger

	mu     sync.Mutex
	sender domain.FrameSender
	roster []string
	target string
}

// NewSession returns a Session printing to out.
func NewSession(self domain.Identity, out io.Writer, opts Options) *Session {
	s := &Session{
		self:   self,
		out:    out,
		box:    opts.Box,
		images: opts.Images,
		loc:    opts.Location,
		now:    opts.Now,
		log:    opts.Log,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// SetSender attaches the connection frames are sent on.
func (s *Session) SetSender(fs domain.FrameSender) {
	s.mu.Lock()
	s.sender = fs
	s.mu.Unlock()
}

// Self is the local identity.
func (s *Session) Self() domain.Identity { return s.self }

// Roster returns the current roster ids.
func (s *Session) Roster() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.roster)
}

// Target is the selected peer; empty means broadcast.
func (s *Session) Target() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// TargetLabel renders the target the way the status line shows it.
func (s *Session) TargetLabel() string {
	if t := s.Target(); t != "" {
		return "To: " + t
	}
	return "To: (none)"
}

// SetTarget selects a peer from the roster for direct messages. An empty id
// clears the selection.
func (s *Session) SetTarget(id string) error {
	id = strings.TrimSpace(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" && !slices.Contains(s.roster, id) {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, id)
	}
	s.target = id
	return nil
}

// ClearTarget switches back to broadcasting.
func (s *Session) ClearTarget() {
	s.mu.Lock()
	s.target = ""
	s.mu.Unlock()
}

// RequestRoster asks the hub for a fresh roster.
func (s *Session) RequestRoster() error {
	return s.send(domain.Frame{Type: domain.FramePresenceReq})
}

// HandleFrame applies one frame from the hub.
func (s *Session) HandleFrame(f domain.Frame) {
	switch f.Type {
	case domain.FrameRoster:
		s.updateRoster(f.List)
	case domain.FramePresence:
		s.log.Debug().Str("event", f.Event).Str("id", f.ID).Msg("presence")
		if err := s.RequestRoster(); err != nil {
			s.log.Debug().Err(err).Msg("roster request failed")
		}
	case domain.FrameMsg:
		s.appendMessage(f.From, s.openText(f), f.Time())
	case domain.FrameImg:
		s.receiveImage(f)
	default:
		s.log.Debug().Str("type", string(f.Type)).Msg("ignored frame")
	}
}

// SendText sends a chat line to the target, or to everyone when no target
// is selected. Blank text is ignored. The line is echoed locally first.
func (s *Session) SendText(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	now := s.now()
	f := domain.Frame{
		Type: domain.FrameMsg,
		MID:  uuid.NewString(),
		From: s.self.ID,
		To:   s.Target(),
		Body: text,
		TS:   domain.Timestamp(now),
	}
	if err := s.seal(&f, &f.Body, []byte(text)); err != nil {
		return err
	}
	s.appendMessage(s.self.ID, text, now)
	return s.send(f)
}

// SendImage sends the image at path to the target or everyone.
func (s *Session) SendImage(path string) error {
	if !s.hasSender() {
		return ErrNoConnection
	}
	if !slices.Contains(imageExts, strings.ToLower(filepath.Ext(path))) {
		return fmt.Errorf("%w: %s", ErrUnsupportedImage, filepath.Base(path))
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	name := filepath.Base(path)
	now := s.now()
	f := domain.Frame{
		Type: domain.FrameImg,
		MID:  uuid.NewString(),
		From: s.self.ID,
		To:   s.Target(),
		Data: crypto.B64(raw),
		Name: name,
		TS:   domain.Timestamp(now),
	}
	if err := s.seal(&f, &f.Data, raw); err != nil {
		return err
	}
	s.appendMessage(s.self.ID, fmt.Sprintf("[Image sent: %s]", name), now)
	return s.send(f)
}

func (s *Session) updateRoster(list []domain.RosterEntry) {
	seen := make(map[string]bool, len(list))
	ids := make([]string, 0, len(list))
	for _, r := range list {
		rid := firstNonEmpty(r.ID, r.Name, r.Addr)
		if rid == "" || seen[rid] {
			continue
		}
		seen[rid] = true
		ids = append(ids, rid)
	}
	s.mu.Lock()
	s.roster = ids
	s.mu.Unlock()
}

func (s *Session) receiveImage(f domain.Frame) {
	var raw []byte
	var err error
	switch {
	case f.Enc && s.box == nil:
		s.appendMessage(f.From, "[encrypted image]", f.Time())
		return
	case f.Enc:
		raw, err = s.box.Open([]byte(domain.FrameImg), f.Data)
	default:
		raw, err = crypto.UnB64(f.Data)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("from", f.From).Msg("dropping unreadable image")
		return
	}
	if s.images == nil {
		return
	}
	name := f.Name
	if name == "" {
		name = "image"
	}
	path, err := s.images.SaveImage(name, raw)
	if err != nil {
		s.log.Warn().Err(err).Str("from", f.From).Msg("saving image failed")
		return
	}
	s.appendMessage(f.From, fmt.Sprintf("[Image saved: %s]", path), s.now())
}

func (s *Session) openText(f domain.Frame) string {
	if !f.Enc {
		return f.Body
	}
	if s.box == nil {
		return "[encrypted message]"
	}
	pt, err := s.box.Open([]byte(domain.FrameMsg), f.Body)
	if err != nil {
		return "[undecryptable message]"
	}
	return string(pt)
}

func (s *Session) seal(f *domain.Frame, field *string, plaintext []byte) error {
	if s.box == nil {
		return nil
	}
	sealed, err := s.box.Seal([]byte(f.Type), plaintext)
	if err != nil {
		return fmt.Errorf("seal %s: %w", f.Type, err)
	}
	*field = sealed
	f.Enc = true
	return nil
}

func (s *Session) appendMessage(from, body string, ts time.Time) {
	if ts.IsZero() {
		ts = s.now()
	}
	s.printf("[%s] <%s>: %s\n", ts.In(s.loc).Format(timeLayout), from, body)
}

func (s *Session) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func (s *Session) hasSender() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sender != nil
}

func (s *Session) send(f domain.Frame) error {
	s.mu.Lock()
	sender := s.sender
	s.mu.Unlock()
	if sender == nil {
		return ErrNoConnection
	}
	return sender.Send(f)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
