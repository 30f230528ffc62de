package jobboard

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
	"github.com/google/uuid"
)

// RegisterBoardRoutes mounts the lifecycle endpoints. The route guard
// middleware is expected to run before any of these handlers.
func RegisterBoardRoutes[T any](app router.Router[T], opts ...BoardControllerOption) {
	controller := NewBoardController(opts...)

	app.Get(controller.Routes.PostJob, controller.PostJobShow).
		SetName("post-job.get")
	app.Post(controller.Routes.PostJob, controller.PostJobCreate).
		SetName("post-job.post")

	app.Get(fmt.Sprintf("%s/:id", controller.Routes.Jobs), controller.ShowJob).
		SetName("job.get")
	app.Post(fmt.Sprintf("%s/:id/submit", controller.Routes.Jobs), controller.SubmitJob).
		SetName("job-submit.post")
	app.Post(fmt.Sprintf("%s/:id/archive", controller.Routes.Jobs), controller.ArchiveJob).
		SetName("job-archive.post")
	app.Post(fmt.Sprintf("%s/:id/fill", controller.Routes.Jobs), controller.MarkFilled).
		SetName("job-fill.post")

	app.Post(fmt.Sprintf("%s/:id/approve", controller.Routes.Moderation), controller.ApproveJob).
		SetName("job-approve.post")
	app.Post(fmt.Sprintf("%s/:id/reject", controller.Routes.Moderation), controller.RejectJob).
		SetName("job-reject.post")

	app.Get(fmt.Sprintf("%s/:id", controller.Routes.Applications), controller.ShowApplication).
		SetName("application.get")
	app.Post(fmt.Sprintf("%s/:id/status", controller.Routes.Applications), controller.ReviewApplication).
		SetName("application-status.post")

	app.Get(controller.Routes.Onboarding, controller.OnboardingShow).
		SetName("onboarding.get")
	app.Post(controller.Routes.Onboarding, controller.OnboardingComplete).
		SetName("onboarding.post")
}

type BoardControllerRoutes struct {
	PostJob      string
	Jobs         string
	Moderation   string
	Applications string
	Onboarding   string
}

type BoardControllerViews struct {
	PostJob     string
	Job         string
	Application string
	Onboarding  string
}

type BoardController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Engine       *Engine
	Routes       *BoardControllerRoutes
	Views        *BoardControllerViews
	ErrorHandler router.ErrorHandler
}

type BoardControllerOption func(*BoardController) *BoardController

func WithBoardRepo(repo RepositoryManager) BoardControllerOption {
	return func(c *BoardController) *BoardController {
		c.Repo = repo
		return c
	}
}

func WithBoardEngine(engine *Engine) BoardControllerOption {
	return func(c *BoardController) *BoardController {
		c.Engine = engine
		return c
	}
}

func WithBoardLogger(logger Logger) BoardControllerOption {
	return func(c *BoardController) *BoardController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithBoardDebug(debug bool) BoardControllerOption {
	return func(c *BoardController) *BoardController {
		c.Debug = debug
		return c
	}
}

func NewBoardController(opts ...BoardControllerOption) *BoardController {
	c := &BoardController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &BoardControllerRoutes{
			PostJob:      "/dashboard/post-job",
			Jobs:         "/dashboard/jobs",
			Moderation:   "/dashboard/admin/jobs",
			Applications: "/dashboard/applications",
			Onboarding:   "/onboarding",
		},
		Views: &BoardControllerViews{
			PostJob:     "post_job",
			Job:         "job",
			Application: "application",
			Onboarding:  "onboarding",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in board controller...")
	}

	if c.Engine == nil {
		panic("Missing Engine in board controller...")
	}

	return c
}

func (b *BoardController) identity(ctx router.Context) (*Identity, error) {
	if identity, ok := IdentityFromContext(ctx.Context()); ok && identity != nil {
		return identity, nil
	}
	if identity, ok := GetRouterIdentity(ctx, ""); ok && identity != nil {
		return identity, nil
	}
	return nil, ErrUnauthenticated
}

func (b *BoardController) PostJobShow(ctx router.Context) error {
	return ctx.Render(b.Views.PostJob, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

// PostJobPayload is the new listing form
type PostJobPayload struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Location    string `form:"location" json:"location"`
}

// Validate will run validation rules
func (r PostJobPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&r.Description, validation.Required, validation.Length(10, 10000)),
		validation.Field(&r.Location, validation.Length(0, 200)),
	)
}

func (b *BoardController) PostJobCreate(ctx router.Context) error {
	identity, err := b.identity(ctx)
	if err != nil {
		return b.ErrorHandler(ctx, err)
	}

	payload := new(PostJobPayload)

	if err := ctx.Bind(payload); err != nil {
		b.Logger.Error("post job parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(b.Views.PostJob, router.ViewContext{
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		b.Logger.Error("post job validate payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(b.Views.PostJob, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	var job *Job
	req := PostJobMessage{
		EmployerID:  identity.ID,
		Title:       payload.Title,
		Description: payload.Description,
		Location:    payload.Location,
		OnResponse: func(j *Job) {
			job = j
		},
	}

	postJob := PostJobHandler{repo: b.Repo}
	if err := postJob.Execute(ctx.Context(), identity, req); err != nil {
		b.Logger.Error("post job error: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error creating listing",
		}).Status(b.statusForError(err)).Render(b.Views.PostJob, router.ViewContext{
			"record": payload,
		})
	}

	if b.Debug {
		fmt.Println(print.MaybePrettyJSON(job))
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Listing created as draft",
	}).Redirect(fmt.Sprintf("%s/%s", b.Routes.Jobs, job.ID), fiber.StatusSeeOther)
}

func (b *BoardController) ShowJob(ctx router.Context) error {
	identity, err := b.identity(ctx)
	if err != nil {
		return b.ErrorHandler(ctx, err)
	}

	jobID, err := b.paramID(ctx)
	if err != nil {
		return b.ErrorHandler(ctx, err)
	}

	job, err := b.Repo.Jobs().GetByID(ctx.Context(), jobID.String())
	if err != nil {
		return b.ErrorHandler(ctx, err)
	}

	targets, err := b.Engine.AllowedJobTargets(ctx.Context(), identity, jobID)
	if err != nil {
		return b.ErrorHandler(ctx, err)
	}

	return ctx.Render(b.Views.Job, router.ViewContext{
		"record":  job,
		"targets": targets,
	})
}

func (b *BoardController) SubmitJob(ctx router.Context) error {
	return b.transitionJob(ctx, JobStatusPendingApproval, "Listing submitted for approval")
}

func (b *BoardController) ApproveJob(ctx router.Context) error {
	return b.transitionJob(ctx, JobStatusApproved, "Listing approved")
}

// RejectJobPayload carries the moderation verdict
type RejectJobPayload struct {
	Reason string `form:"reason" json:"reason"`
}

// Validate will run validation rules
func (r RejectJobPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Reason, validation.Length(0, 1000)),
	)
}

func (b *BoardController) RejectJob(ctx router.Context) error {
	payload := new(RejectJobPayload)
	if err := ctx.Bind(payload); err != nil {
		return b.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return b.ErrorHandler(ctx, err)
	}

	opts := []TransitionOption{}
	if payload.Reason != "" {
		opts = append(opts, WithTransitionReason(payload.Reason))
	}

	return b.transitionJob(ctx, JobStatusRejected, "Listing rejected", opts...)
}

func (b *BoardController) ArchiveJob(ctx router.Context) error {
	return b.transitionJob(ctx, JobStatusArchived, "Listing archived")
}

func (b *BoardController) MarkFilled(ctx router.Context) error {
	return b.transitionJob(ctx, JobStatusFilled, "Listing marked as filled")
}

func (b *BoardController) transitionJob(ctx router.Context, target JobStatus, successMessage string, opts ...TransitionOption) error {
	identity, err := b.identity(ctx)
	if err != nil {
		return b.ErrorHandler(ctx, err)
	}

	jobID, err := b.paramID(ctx)
	if err != nil {
		return b.ErrorHandler(ctx, err)
	}

	job, err := b.Engine.TransitionJob(ctx.Context(), identity, jobID, target, opts...)
	if err != nil {
		b.Logger.Error("job transition error: ", "error", err, "target", target)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Could not update listing",
		}).Redirect(fmt.Sprintf("%s/%s", b.Routes.Jobs, jobID), b.redirectStatusForError(err))
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": successMessage,
	}).Redirect(fmt.Sprintf("%s/%s", b.Routes.Jobs, job.ID), fiber.StatusSeeOther)
}

func (b *BoardController) ShowApplication(ctx router.Context) error {
	identity, err := b.identity(ctx)
	if err != nil {
		return b.ErrorHandler(ctx, err)
	}

	appID, err := b.paramID(ctx)
	if err != nil {
		return b.ErrorHandler(ctx, err)
	}

	app, err := b.Engine.ViewApplication(ctx.Context(), identity, appID)
	if err != nil {
		return b.ErrorHandler(ctx, err)
	}

	targets, err := b.Engine.AllowedApplicationTargets(ctx.Context(), identity, appID)
	if err != nil {
		return b.ErrorHandler(ctx, err)
	}

	return ctx.Render(b.Views.Application, router.ViewContext{
		"record":  app,
		"targets": targets,
	})
}

// ReviewApplicationPayload is the employer's status decision
type ReviewApplicationPayload struct {
	Status string `form:"status" json:"status"`
	Reason string `form:"reason" json:"reason"`
}

// Validate will run validation rules
func (r ReviewApplicationPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Status,
			validation.Required,
			validation.In(
				string(ApplicationStatusViewed),
				string(ApplicationStatusInterviewing),
				string(ApplicationStatusOffered),
				string(ApplicationStatusHired),
				string(ApplicationStatusRejected),
			),
		),
		validation.Field(&r.Reason, validation.Length(0, 1000)),
	)
}

func (b *BoardController) ReviewApplication(ctx router.Context) error {
	identity, err := b.identity(ctx)
	if err != nil {
		return b.ErrorHandler(ctx, err)
	}

	appID, err := b.paramID(ctx)
	if err != nil {
		return b.ErrorHandler(ctx, err)
	}

	payload := new(ReviewApplicationPayload)
	if err := ctx.Bind(payload); err != nil {
		b.Logger.Error("review application parse payload: ", "error", err)
		return b.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "failed to parse status payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		b.Logger.Error("review application validate payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Status(fiber.StatusBadRequest).Render(b.Views.Application, router.ViewContext{
			"validation": FormatValidationErrorToMap(err),
		})
	}

	opts := []TransitionOption{}
	if payload.Reason != "" {
		opts = append(opts, WithTransitionReason(payload.Reason))
	}

	app, err := b.Engine.TransitionApplication(ctx.Context(), identity, appID, ApplicationStatus(payload.Status), opts...)
	if err != nil {
		b.Logger.Error("application transition error: ", "error", err, "target", payload.Status)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Could not update application",
		}).Redirect(fmt.Sprintf("%s/%s", b.Routes.Applications, appID), b.redirectStatusForError(err))
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Application updated",
	}).Redirect(fmt.Sprintf("%s/%s", b.Routes.Applications, app.ID), fiber.StatusSeeOther)
}

func (b *BoardController) OnboardingShow(ctx router.Context) error {
	return ctx.Render(b.Views.Onboarding, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

// OnboardingPayload is the profile completion form
type OnboardingPayload struct {
	FirstName   string `form:"first_name" json:"first_name"`
	LastName    string `form:"last_name" json:"last_name"`
	Phone       string `form:"phone_number" json:"phone_number"`
	CompanyName string `form:"company_name" json:"company_name"`
}

func (b *BoardController) OnboardingComplete(ctx router.Context) error {
	identity, err := b.identity(ctx)
	if err != nil {
		return b.ErrorHandler(ctx, err)
	}

	payload := new(OnboardingPayload)
	if err := ctx.Bind(payload); err != nil {
		b.Logger.Error("onboarding parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(b.Views.Onboarding, router.ViewContext{
			"record": payload,
		})
	}

	req := CompleteOnboardingMessage{
		IdentityID:  identity.ID,
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		Phone:       payload.Phone,
		CompanyName: payload.CompanyName,
	}

	completeOnboarding := CompleteOnboardingHandler{repo: b.Repo}
	if err := completeOnboarding.Execute(ctx.Context(), identity, req); err != nil {
		b.Logger.Error("onboarding error: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error completing onboarding",
		}).Status(b.statusForError(err)).Render(b.Views.Onboarding, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Onboarding complete",
	}).Redirect(DefaultDashboardPath, fiber.StatusSeeOther)
}

func (b *BoardController) paramID(ctx router.Context) (uuid.UUID, error) {
	raw := ctx.Param("id", "")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CategoryBadInput, "invalid resource id").
			WithCode(errors.CodeBadRequest).
			WithMetadata(map[string]any{"id": raw})
	}
	return id, nil
}

func (b *BoardController) statusForError(err error) int {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Code > 0 {
		return richErr.Code
	}
	if errors.IsNotFound(err) {
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// redirectStatusForError keeps form-post failures on a redirect response
// so flash messages survive, the error detail travels in the flash payload.
func (b *BoardController) redirectStatusForError(err error) int {
	return fiber.StatusSeeOther
}

// FormatValidationErrorToMap flattens ozzo validation errors for templates
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["error"] = err.Error()
	return out
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
