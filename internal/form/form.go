// Package form implements the entity form: a mutable draft of one entity,
// seeded blank (create) or from an existing entity (edit), validated
// against the kind's field schema, and submitted through the data access
// layer. One generic Form serves every kind; the schema decides which
// fields exist, which are required, and how each is edited.
package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// Mode is create or edit.
type Mode string

// Form modes.
const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Form errors.
var (
	ErrUnknownField  = errors.New("unknown field")
	ErrRepeatedField = errors.New("field holds a list; use item operations")
	ErrNotRepeated   = errors.New("field does not hold a list")
	ErrIndexRange    = errors.New("item index out of range")
	ErrInvalidNumber = errors.New("invalid number")
	ErrClosed        = errors.New("form is closed")
)

// Saver is the data access surface a Form submits through.
type Saver[M any] interface {
	Create(ctx context.Context, data types.FormData[M]) (types.Entity[M], error)
	Update(ctx context.Context, id string, patch types.Patch[M]) (types.Entity[M], error)
}

// Draft is a copy of the form state.
type Draft struct {
	Title    string         `json:"title"`
	Metadata map[string]any `json:"metadata"`
}

// Form is a single-entity draft. It is not safe for concurrent use.
type Form[M any] struct {
	schema    types.Schema
	mode      Mode
	id        string
	title     string
	fields    map[string]any
	extra     map[string]any
	inline    string
	open      bool
	onSuccess func(types.Entity[M])
}

// Option configures a Form.
type Option[M any] func(*Form[M])

// OnSuccess registers the callback invoked with the saved entity.
func OnSuccess[M any](fn func(types.Entity[M])) Option[M] {
	return func(f *Form[M]) { f.onSuccess = fn }
}

// NewCreate returns a create-mode form with blank defaults.
func NewCreate[M any](schema types.Schema, opts ...Option[M]) *Form[M] {
	f := &Form[M]{
		schema: schema,
		mode:   ModeCreate,
		fields: make(map[string]any, len(schema.Fields)),
		open:   true,
	}
	for _, fd := range schema.Fields {
		f.fields[fd.Name] = blank(fd.Type)
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewEdit returns an edit-mode form seeded from e.
func NewEdit[M any](schema types.Schema, e types.Entity[M], opts ...Option[M]) (*Form[M], error) {
	var bag map[string]any
	data, err := json.Marshal(e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("seeding form: %w", err)
	}
	if err := json.Unmarshal(data, &bag); err != nil {
		return nil, fmt.Errorf("seeding form: %w", err)
	}

	f := NewCreate[M](schema, opts...)
	f.mode = ModeEdit
	f.id = e.ID
	f.title = e.Title
	for _, fd := range schema.Fields {
		f.fields[fd.Name] = seed(fd.Type, bag[fd.Name])
		delete(bag, fd.Name)
	}
	if len(bag) > 0 {
		f.extra = bag
	}
	return f, nil
}

// Mode returns create or edit.
func (f *Form[M]) Mode() Mode { return f.mode }

// ID returns the edited entity's id; empty in create mode.
func (f *Form[M]) ID() string { return f.id }

// Schema returns the form's field schema.
func (f *Form[M]) Schema() types.Schema { return f.schema }

// Open reports whether the form is still accepting input.
func (f *Form[M]) Open() bool { return f.open }

// Close discards the draft without saving.
func (f *Form[M]) Close() { f.open = false }

// Error returns the inline error shown after a failed submit, if any.
func (f *Form[M]) Error() string { return f.inline }

// Title returns the draft title.
func (f *Form[M]) Title() string { return f.title }

// SetTitle replaces the draft title.
func (f *Form[M]) SetTitle(title string) { f.title = title }

// Value returns the draft value of a scalar field.
func (f *Form[M]) Value(name string) (any, error) {
	fd, err := f.field(name)
	if err != nil {
		return nil, err
	}
	if fd.Type.Repeated() {
		return nil, fmt.Errorf("%s: %w", name, ErrRepeatedField)
	}
	return f.fields[name], nil
}

// Set replaces a scalar field from its text input. Number fields parse the
// text as an integer; an empty string clears them.
func (f *Form[M]) Set(name, value string) error {
	fd, err := f.field(name)
	if err != nil {
		return err
	}
	if fd.Type.Repeated() {
		return fmt.Errorf("%s: %w", name, ErrRepeatedField)
	}
	if fd.Type == types.FieldNumber {
		value = strings.TrimSpace(value)
		if value == "" {
			f.fields[name] = nil
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w %q", name, ErrInvalidNumber, value)
		}
		f.fields[name] = n
		return nil
	}
	f.fields[name] = value
	return nil
}

// Items returns a copy of a list field's entries.
func (f *Form[M]) Items(name string) ([]string, error) {
	items, err := f.items(name)
	if err != nil {
		return nil, err
	}
	return append([]string{}, items...), nil
}

// SetItems replaces every entry of a list field.
func (f *Form[M]) SetItems(name string, values []string) error {
	if _, err := f.items(name); err != nil {
		return err
	}
	f.fields[name] = append([]string{}, values...)
	return nil
}

// AddItem appends an empty entry to a list field.
func (f *Form[M]) AddItem(name string) error {
	items, err := f.items(name)
	if err != nil {
		return err
	}
	f.fields[name] = append(items, "")
	return nil
}

// SetItem edits the entry at index.
func (f *Form[M]) SetItem(name string, index int, value string) error {
	items, err := f.items(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(items) {
		return fmt.Errorf("%s[%d]: %w", name, index, ErrIndexRange)
	}
	items[index] = value
	return nil
}

// RemoveItem deletes the entry at index; later entries shift down.
func (f *Form[M]) RemoveItem(name string, index int) error {
	items, err := f.items(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(items) {
		return fmt.Errorf("%s[%d]: %w", name, index, ErrIndexRange)
	}
	out := make([]string, 0, len(items)-1)
	out = append(out, items[:index]...)
	f.fields[name] = append(out, items[index+1:]...)
	return nil
}

// Draft returns a copy of the form state.
func (f *Form[M]) Draft() Draft {
	meta := make(map[string]any, len(f.fields))
	for k, v := range f.fields {
		if items, ok := v.([]string); ok {
			v = append([]string{}, items...)
		}
		meta[k] = v
	}
	return Draft{Title: f.title, Metadata: meta}
}

// Submit validates the draft and, when valid, creates or updates the entity
// through saver. Validation failures never reach the saver. On success the
// OnSuccess callback receives the saved entity and the form closes; on a
// save failure the form stays open with an inline error.
func (f *Form[M]) Submit(ctx context.Context, saver Saver[M]) (types.Entity[M], error) {
	if !f.open {
		return types.Entity[M]{}, ErrClosed
	}
	if err := f.Validate(); err != nil {
		f.inline = err.Error()
		return types.Entity[M]{}, err
	}

	meta, err := f.metadata()
	if err != nil {
		f.inline = err.Error()
		return types.Entity[M]{}, &ValidationError{Message: err.Error()}
	}

	var saved types.Entity[M]
	switch f.mode {
	case ModeCreate:
		saved, err = saver.Create(ctx, types.FormData[M]{Title: f.title, Metadata: meta})
	default:
		title := f.title
		saved, err = saver.Update(ctx, f.id, types.Patch[M]{Title: &title, Metadata: &meta})
	}
	if err != nil {
		f.inline = fmt.Sprintf("Failed to save %s", f.schema.Kind.Singular())
		return types.Entity[M]{}, &SaveError{Message: f.inline, Err: err}
	}

	f.inline = ""
	f.open = false
	if f.onSuccess != nil {
		f.onSuccess(saved)
	}
	return saved, nil
}

// metadata decodes the draft into the kind's metadata struct.
func (f *Form[M]) metadata() (M, error) {
	bag := make(map[string]any, len(f.fields)+len(f.extra))
	for k, v := range f.extra {
		bag[k] = v
	}
	for _, fd := range f.schema.Fields {
		v := f.fields[fd.Name]
		switch fd.Type {
		case types.FieldRef, types.FieldOption, types.FieldImage, types.FieldNumber:
			if v == nil || v == "" {
				delete(bag, fd.Name)
				continue
			}
		case types.FieldRefList:
			items, _ := v.([]string)
			ids := make([]string, 0, len(items))
			for _, id := range items {
				if strings.TrimSpace(id) != "" {
					ids = append(ids, id)
				}
			}
			v = ids
		}
		bag[fd.Name] = v
	}

	var m M
	data, err := json.Marshal(bag)
	if err != nil {
		return m, fmt.Errorf("encoding draft: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decoding draft: %w", err)
	}
	return m, nil
}

func (f *Form[M]) field(name string) (types.Field, error) {
	fd, ok := f.schema.Field(name)
	if !ok {
		return types.Field{}, fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	return fd, nil
}

func (f *Form[M]) items(name string) ([]string, error) {
	fd, err := f.field(name)
	if err != nil {
		return nil, err
	}
	if !fd.Type.Repeated() {
		return nil, fmt.Errorf("%s: %w", name, ErrNotRepeated)
	}
	items, _ := f.fields[name].([]string)
	return items, nil
}

func blank(t types.FieldType) any {
	switch t {
	case types.FieldList, types.FieldRefList:
		return []string{}
	case types.FieldNumber, types.FieldImage:
		return nil
	default:
		return ""
	}
}

// seed normalizes a decoded metadata value into its draft representation.
func seed(t types.FieldType, v any) any {
	if v == nil {
		return blank(t)
	}
	switch t {
	case types.FieldList, types.FieldRefList:
		raw, _ := v.([]any)
		items := make([]string, 0, len(raw))
		for _, item := range raw {
			items = append(items, stringOf(item, "id"))
		}
		return items
	case types.FieldNumber:
		if n, ok := v.(float64); ok {
			return int(n)
		}
		return nil
	case types.FieldRef:
		return stringOf(v, "id")
	case types.FieldOption:
		return stringOf(v, "key")
	case types.FieldImage:
		return v
	default:
		s, _ := v.(string)
		return s
	}
}

func stringOf(v any, key string) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		s, _ := t[key].(string)
		return s
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}
