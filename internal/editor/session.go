// Package editor is the façade of one editing session. It composes the
// document model, the asset registry and the history manager, and pairs
// every mutating operation with exactly one history push.
//
// A Session is single-threaded: each call runs to completion and the
// Session does no locking. Callers that share a Session across goroutines
// must serialize access (see api.Workspace).
package editor

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/starford/postframe/internal/assets"
	"github.com/starford/postframe/internal/document"
	"github.com/starford/postframe/internal/effects"
	"github.com/starford/postframe/internal/history"
	"github.com/starford/postframe/internal/imagesrc"
	"github.com/starford/postframe/internal/masks"
	"github.com/starford/postframe/internal/models"
)

// Operation names reported to observers.
const (
	OpAddElement    = "element.add"
	OpUpdateElement = "element.update"
	OpRemoveElement = "element.remove"
	OpVisibility    = "element.visibility"
	OpLock          = "element.lock"
	OpEffect        = "element.effect"
	OpMask          = "element.mask"
	OpCanvas        = "canvas.update"
	OpBackground    = "background.update"
	OpClear         = "editor.clear"
	OpUndo          = "history.undo"
	OpRedo          = "history.redo"
	OpLoad          = "document.load"
)

// Change describes a state transition of a session.
type Change struct {
	Op        string `json:"op"`
	ElementID string `json:"elementId,omitempty"`
}

// Observer is called after every state transition.
type Observer func(Change)

// Payload is the persistence boundary: a document plus its exportable files.
type Payload struct {
	Document models.Document    `json:"document"`
	Files    []models.AssetFile `json:"files"`
}

// Session is one editing scope.
type Session struct {
	model     *document.Model
	files     *assets.Registry
	history   *history.Manager
	catalogue *masks.Catalogue
	loader    imagesrc.Loader
	observer  Observer
	logger    *slog.Logger
	newID     func() string

	historyLimit int
	canvasWidth  int
	canvasHeight int
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithIDGenerator overrides uuid-based element and layer ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) { s.newID = fn }
}

// WithLoader sets the collaborator that fetches image sources for masking.
func WithLoader(l imagesrc.Loader) Option {
	return func(s *Session) { s.loader = l }
}

// WithCatalogue sets the mask catalogue.
func WithCatalogue(c *masks.Catalogue) Option {
	return func(s *Session) { s.catalogue = c }
}

// WithHistoryLimit caps the number of undo steps kept. 0 keeps every step;
// without this option history.DefaultLimit applies.
func WithHistoryLimit(n int) Option {
	return func(s *Session) { s.historyLimit = n }
}

// WithCanvas sets the canvas size of new and cleared documents.
func WithCanvas(width, height int) Option {
	return func(s *Session) { s.canvasWidth, s.canvasHeight = width, height }
}

// WithObserver registers fn to be told about every state transition.
func WithObserver(fn Observer) Option {
	return func(s *Session) { s.observer = fn }
}

// New creates a session holding an empty document.
func New(opts ...Option) *Session {
	s := &Session{
		model:  document.New(),
		logger: slog.Default(),
		newID:  uuid.NewString,

		historyLimit: history.DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalogue == nil {
		s.catalogue = masks.NewCatalogue()
	}
	if s.loader == nil {
		s.loader = imagesrc.NewFetcher()
	}
	s.files = assets.NewRegistry(s.logger)
	s.resetModel()
	s.history = history.New(s.snapshot(), s.historyLimit)
	return s
}

func (s *Session) resetModel() {
	s.model.Reset()
	if s.canvasWidth > 0 && s.canvasHeight > 0 {
		if err := s.model.UpdateCanvasSize(s.canvasWidth, s.canvasHeight); err != nil {
			s.logger.Warn("invalid default canvas size", slog.String("error", err.Error()))
		}
	}
}

func (s *Session) snapshot() history.Entry {
	return history.Entry{Document: s.model.Document(), Files: s.files.Files()}
}

// commit pushes the post-mutation state and notifies the observer.
func (s *Session) commit(op, elementID string) {
	s.history.Push(s.snapshot())
	s.notify(op, elementID)
}

func (s *Session) notify(op, elementID string) {
	if s.observer != nil {
		s.observer(Change{Op: op, ElementID: elementID})
	}
}

func (s *Session) apply(e history.Entry) {
	s.model.Restore(e.Document)
	s.files.Replace(e.Files)
}

// Document returns a copy of the current document.
func (s *Session) Document() models.Document {
	return s.model.Document()
}

// Files returns every registered asset file, exportable or not.
func (s *Session) Files() []models.AssetFile {
	return s.files.Files()
}

// File returns the first asset file called name.
func (s *Session) File(name string) (models.AssetFile, bool) {
	return s.files.Get(name)
}

// Element returns a copy of the element with id.
func (s *Session) Element(id string) (models.Element, bool) {
	return s.model.Find(id)
}

// Catalogue returns the mask catalogue used by the session.
func (s *Session) Catalogue() *masks.Catalogue {
	return s.catalogue
}

// Undo restores the previous snapshot. It reports false when there is
// nothing to undo.
func (s *Session) Undo() bool {
	e, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.apply(e)
	s.notify(OpUndo, "")
	return true
}

// Redo re-applies the next snapshot. It reports false when there is nothing
// to redo.
func (s *Session) Redo() bool {
	e, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.apply(e)
	s.notify(OpRedo, "")
	return true
}

// CanUndo reports whether Undo would change anything.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether Redo would change anything.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// Export returns the save payload: the document and the files it may carry.
func (s *Session) Export() Payload {
	doc := s.model.Document()
	return Payload{Document: doc, Files: assets.Exportable(doc, s.files.Files())}
}

// Load replaces the document and files wholesale and starts a fresh history
// with the loaded state as present.
func (s *Session) Load(p Payload) error {
	if err := p.Document.Validate(); err != nil {
		return err
	}
	s.model.Restore(p.Document)
	s.files.Replace(nil)
	for _, f := range p.Files {
		s.files.AddFile(f)
	}
	s.history.Reset(s.snapshot())
	s.notify(OpLoad, "")
	return nil
}

// RenderItem is what a drawing surface needs to paint one element.
type RenderItem struct {
	ID           string              `json:"id"`
	Type         models.ElementType  `json:"type"`
	Position     models.Position     `json:"position"`
	Size         *models.Size        `json:"size,omitempty"`
	Props        models.Props        `json:"props"`
	Styles       models.StyleMap     `json:"styles"`
	CornerRadius models.Effect       `json:"cornerRadius"`
	Border       models.BorderEffect `json:"border"`
	Shadow       models.ShadowEffect `json:"shadow"`
}

// RenderList returns the visible elements in paint order with their derived
// styles.
func (s *Session) RenderList() []RenderItem {
	var out []RenderItem
	for _, el := range s.model.PaintOrder() {
		if !el.Visible {
			continue
		}
		out = append(out, RenderItem{
			ID:           el.ID,
			Type:         el.Type,
			Position:     el.Position,
			Size:         el.Size,
			Props:        el.Props,
			Styles:       effects.Compose(el.Effects).Apply(el.Styles),
			CornerRadius: el.Effects.CornerRadius,
			Border:       el.Effects.Border,
			Shadow:       el.Effects.Shadow,
		})
	}
	return out
}
