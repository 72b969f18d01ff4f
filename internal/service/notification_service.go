package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/placement-cell/placement-api/internal/models"
	"github.com/placement-cell/placement-api/pkg/config"
	"github.com/placement-cell/placement-api/pkg/jobs"
)

// Mailer sends a single HTML message.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// StatusNotification is the payload queued per status change.
type StatusNotification struct {
	Email       string
	Status      models.ApplicationStatus
	CompanyName string
	StudentName string
}

// NotificationService dispatches status emails through a background queue so
// a slow or failing mail relay never blocks the status-update response.
type NotificationService struct {
	mailer  Mailer
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService constructs the service and its delivery queue.
func NewNotificationService(mailer Mailer, cfg config.NotifyConfig, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{mailer: mailer, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Notify enqueues a status notification. Errors are returned for logging only;
// callers treat dispatch as best-effort.
func (s *NotificationService) Notify(ctx context.Context, email string, status models.ApplicationStatus, companyName, studentName string) error {
	return s.queue.Enqueue(jobs.Job{
		ID:   uuid.NewString(),
		Type: "status_email",
		Payload: StatusNotification{
			Email:       email,
			Status:      status,
			CompanyName: companyName,
			StudentName: studentName,
		},
	})
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(StatusNotification)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}

	subject := StatusEmailSubject(payload.Status, payload.CompanyName)
	body := StatusEmailBody(payload.StudentName, payload.CompanyName, payload.Status)

	if err := s.mailer.Send(payload.Email, subject, body); err != nil {
		s.metrics.RecordNotification("error")
		return err
	}
	s.metrics.RecordNotification("sent")

	s.logger.Info("status email sent",
		zap.String("to", payload.Email),
		zap.String("status", string(payload.Status)),
		zap.String("company", payload.CompanyName))
	return nil
}

// StatusEmailSubject returns the subject line for a status change.
func StatusEmailSubject(status models.ApplicationStatus, companyName string) string {
	if status == models.StatusHired {
		return fmt.Sprintf("Job Offer: %s", companyName)
	}
	return fmt.Sprintf("Interview Shortlist: %s", companyName)
}

// StatusEmailBody renders the HTML body for a status change.
func StatusEmailBody(studentName, companyName string, status models.ApplicationStatus) string {
	return fmt.Sprintf(`
        <div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
            <h2 style="color: #4f46e5;">Update on your application</h2>
            <p>Hello <strong>%s</strong>,</p>
            <p>We are pleased to inform you that your application status for <strong>%s</strong> has been updated to: <span style="background-color: #e0e7ff; padding: 4px 8px; border-radius: 4px; font-weight: bold; color: #4338ca; text-transform: uppercase;">%s</span>.</p>
            <p>Please log in to your dashboard for more details.</p>
            <br/>
            <p>Best regards,<br/>Placement Cell</p>
        </div>`, studentName, companyName, status)
}
