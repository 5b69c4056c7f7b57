package web

import (
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/contentdesk/internal/content"
	"github.com/mesh-intelligence/contentdesk/internal/form"
	"github.com/mesh-intelligence/contentdesk/internal/manager"
)

// resource is the kind-erased handler set for one content kind.
type resource interface {
	list(c *fiber.Ctx) error
	reload(c *fiber.Ctx) error
	get(c *fiber.Ctx) error
	create(c *fiber.Ctx) error
	update(c *fiber.Ctx) error
	remove(c *fiber.Ctx) error
}

// entityBody is the JSON body accepted by create and update.
type entityBody struct {
	Title    *string        `json:"title"`
	Metadata map[string]any `json:"metadata"`
}

type kindResource[M any] struct {
	coll *content.Collection[M]
	mgr  *manager.Manager[M]
	log  *zap.Logger

	loadMu sync.Mutex
	loaded bool
}

func newResource[M any](coll *content.Collection[M], log *zap.Logger, opts ...manager.Option[M]) *kindResource[M] {
	return &kindResource[M]{
		coll: coll,
		mgr:  manager.New[M](coll, opts...),
		log:  log.With(zap.String("kind", coll.Kind().String())),
	}
}

// ensureLoaded performs the first Load. Later failures are only retried
// through reload.
func (r *kindResource[M]) ensureLoaded(c *fiber.Ctx) {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()
	if r.loaded {
		return
	}
	r.loaded = true
	_ = r.mgr.Load(c.UserContext())
}

func (r *kindResource[M]) view(c *fiber.Ctx) error {
	v := r.mgr.Snapshot()
	status := http.StatusOK
	if v.State == manager.StateError {
		status = http.StatusBadGateway
	}
	return c.Status(status).JSON(v)
}

func (r *kindResource[M]) list(c *fiber.Ctx) error {
	r.ensureLoaded(c)
	return r.view(c)
}

func (r *kindResource[M]) reload(c *fiber.Ctx) error {
	r.loadMu.Lock()
	r.loaded = true
	_ = r.mgr.Retry(c.UserContext())
	r.loadMu.Unlock()
	return r.view(c)
}

func (r *kindResource[M]) get(c *fiber.Ctx) error {
	e, err := r.coll.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if e == nil {
		return writeError(c, errNotFound)
	}
	return c.Status(http.StatusOK).JSON(e)
}

func (r *kindResource[M]) create(c *fiber.Ctx) error {
	var body entityBody
	if err := c.BodyParser(&body); err != nil {
		return writeError(c, errInvalidBody)
	}

	f := form.NewCreate[M](r.coll.Schema())
	if err := f.Apply(body.Title, body.Metadata); err != nil {
		return writeError(c, badRequest(err))
	}
	// Load before writing so the first fetch cannot already hold the new
	// object when it is prepended.
	r.ensureLoaded(c)
	saved, err := f.Submit(c.UserContext(), r.coll)
	if err != nil {
		return writeError(c, err)
	}
	if err := r.mgr.Saved(manager.ModeCreate, saved); err != nil {
		r.log.Debug("held list not patched", zap.Error(err))
	}
	return c.Status(http.StatusCreated).JSON(saved)
}

func (r *kindResource[M]) update(c *fiber.Ctx) error {
	var body entityBody
	if err := c.BodyParser(&body); err != nil {
		return writeError(c, errInvalidBody)
	}

	id := c.Params("id")
	current, ok := r.mgr.Find(id)
	if !ok {
		e, err := r.coll.Get(c.UserContext(), id)
		if err != nil {
			return writeError(c, err)
		}
		if e == nil {
			return writeError(c, errNotFound)
		}
		current = *e
	}

	f, err := form.NewEdit(r.coll.Schema(), current)
	if err != nil {
		return writeError(c, err)
	}
	if err := f.Apply(body.Title, body.Metadata); err != nil {
		return writeError(c, badRequest(err))
	}
	saved, err := f.Submit(c.UserContext(), r.coll)
	if err != nil {
		return writeError(c, err)
	}
	if err := r.mgr.Saved(manager.ModeEdit, saved); err != nil {
		r.log.Debug("held list not patched", zap.Error(err))
	}
	return c.Status(http.StatusOK).JSON(saved)
}

func (r *kindResource[M]) remove(c *fiber.Ctx) error {
	r.ensureLoaded(c)
	confirmed := c.QueryBool("confirm")
	var prompt string
	err := r.mgr.Delete(c.UserContext(), c.Params("id"), manager.ConfirmFunc(func(p string) bool {
		prompt = p
		return confirmed
	}))
	if err != nil {
		if prompt != "" && !confirmed {
			return c.Status(http.StatusConflict).JSON(errorResponse{Error: prompt})
		}
		return writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}
