package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/contentdesk/internal/content"
	"github.com/mesh-intelligence/contentdesk/internal/form"
	"github.com/mesh-intelligence/contentdesk/internal/manager"
	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

var (
	errNotFound      = errors.New("not found")
	errBadAssignment = errors.New("expected field=value")
	errNoTerminal    = errors.New("stdin is not a terminal; pass --yes to delete")
)

// edits are the field changes given on the create and update command lines.
type edits struct {
	title *string
	sets  []string
	items []string
}

// apply writes e into f. Each --item flag appends to its field; fields
// named by --item replace the draft's existing entries.
func apply[M any](f *form.Form[M], e edits) error {
	if e.title != nil {
		f.SetTitle(*e.title)
	}
	for _, s := range e.sets {
		name, value, err := splitAssignment(s)
		if err != nil {
			return err
		}
		if err := f.Set(name, value); err != nil {
			return err
		}
	}

	var order []string
	lists := make(map[string][]string)
	for _, s := range e.items {
		name, value, err := splitAssignment(s)
		if err != nil {
			return err
		}
		if _, seen := lists[name]; !seen {
			order = append(order, name)
		}
		lists[name] = append(lists[name], value)
	}
	for _, name := range order {
		if err := f.SetItems(name, lists[name]); err != nil {
			return err
		}
	}
	return nil
}

func splitAssignment(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("%w, got %q", errBadAssignment, s)
	}
	return name, value, nil
}

// kindOps is the kind-erased command set for one collection.
type kindOps interface {
	kind() types.Kind
	list(ctx context.Context, w io.Writer, asJSON bool) error
	get(ctx context.Context, w io.Writer, id string) error
	create(ctx context.Context, w io.Writer, e edits) error
	update(ctx context.Context, w io.Writer, id string, e edits) error
	remove(ctx context.Context, w io.Writer, id string, confirm manager.Confirmer) error
}

type typedOps[M any] struct {
	coll *content.Collection[M]
	opts []manager.Option[M]
}

// opsFor returns the command set for kind over catalog.
func opsFor(c *content.Catalog, kind types.Kind) kindOps {
	switch kind {
	case types.KindService:
		return &typedOps[types.ServiceMetadata]{coll: c.Services}
	case types.KindTeamMember:
		return &typedOps[types.TeamMemberMetadata]{coll: c.TeamMembers}
	case types.KindTestimonial:
		return &typedOps[types.TestimonialMetadata]{
			coll: c.Testimonials,
			opts: []manager.Option[types.TestimonialMetadata]{manager.WithSubject(manager.TestimonialSubject)},
		}
	default:
		return &typedOps[types.CaseStudyMetadata]{coll: c.CaseStudies}
	}
}

func (o *typedOps[M]) kind() types.Kind { return o.coll.Kind() }

func (o *typedOps[M]) list(ctx context.Context, w io.Writer, asJSON bool) error {
	items, err := o.coll.List(ctx)
	if err != nil {
		return sysError(err)
	}
	if asJSON {
		return printJSON(w, items)
	}
	if len(items) == 0 {
		fmt.Fprintf(w, "No %s found\n", o.kind().Plural())
		return nil
	}

	schema := o.coll.Schema()
	headers := []string{"ID", "TITLE"}
	var primary string
	if req := schema.Required(); len(req) > 0 {
		primary = req[0].Name
		headers = append(headers, strings.ToUpper(req[0].Label))
	}
	headers = append(headers, "CREATED")

	rows := make([][]string, 0, len(items))
	for _, e := range items {
		row := []string{e.ID, e.Title}
		if primary != "" {
			row = append(row, fieldText(e.Metadata, primary))
		}
		rows = append(rows, append(row, formatDate(e.CreatedAt)))
	}
	printTable(w, headers, rows)
	return nil
}

func (o *typedOps[M]) get(ctx context.Context, w io.Writer, id string) error {
	e, err := o.coll.Get(ctx, id)
	if err != nil {
		return sysError(err)
	}
	if e == nil {
		return userError(fmt.Errorf("%s %s: %w", o.kind().Singular(), id, errNotFound))
	}
	return printJSON(w, e)
}

func (o *typedOps[M]) create(ctx context.Context, w io.Writer, e edits) error {
	f := form.NewCreate[M](o.coll.Schema())
	if err := apply(f, e); err != nil {
		return userError(err)
	}
	return o.submit(ctx, w, f)
}

func (o *typedOps[M]) update(ctx context.Context, w io.Writer, id string, e edits) error {
	current, err := o.coll.Get(ctx, id)
	if err != nil {
		return sysError(err)
	}
	if current == nil {
		return userError(fmt.Errorf("%s %s: %w", o.kind().Singular(), id, errNotFound))
	}
	f, err := form.NewEdit(o.coll.Schema(), *current)
	if err != nil {
		return sysError(err)
	}
	if err := apply(f, e); err != nil {
		return userError(err)
	}
	return o.submit(ctx, w, f)
}

func (o *typedOps[M]) submit(ctx context.Context, w io.Writer, f *form.Form[M]) error {
	saved, err := f.Submit(ctx, o.coll)
	if err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			return userError(err)
		}
		return sysError(err)
	}
	return printJSON(w, saved)
}

func (o *typedOps[M]) remove(ctx context.Context, w io.Writer, id string, confirm manager.Confirmer) error {
	mgr := manager.New[M](o.coll, o.opts...)
	if err := mgr.Load(ctx); err != nil {
		return sysError(err)
	}
	e, ok := mgr.Find(id)
	if !ok {
		return userError(fmt.Errorf("%s %s: %w", o.kind().Singular(), id, errNotFound))
	}
	if err := mgr.Delete(ctx, id, confirm); err != nil {
		if errors.Is(err, manager.ErrDeclined) {
			fmt.Fprintln(w, "Cancelled")
			return nil
		}
		return sysError(err)
	}
	fmt.Fprintf(w, "Deleted %s %s (%s)\n", o.kind().Singular(), e.ID, e.Title)
	return nil
}

// fieldText renders one metadata field of m as plain text.
func fieldText(m any, name string) string {
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	var bag map[string]any
	if err := json.Unmarshal(data, &bag); err != nil {
		return ""
	}
	switch v := bag[name].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

var alwaysConfirm = manager.ConfirmFunc(func(string) bool { return true })

// promptConfirmer asks on w and reads a y/N answer from r.
func promptConfirmer(r io.Reader, w io.Writer) manager.Confirmer {
	return manager.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(w, "%s [y/N]: ", prompt)
		line, _ := bufio.NewReader(r).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}
