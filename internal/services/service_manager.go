package services

import (
	"log/slog"

	"github.com/KLH-F-2025/campus-safety-service/internal/events"
	"github.com/KLH-F-2025/campus-safety-service/internal/store"
)

// ServiceManager bundles the domain services behind one constructor so the
// handler layer receives a single dependency.
type ServiceManager interface {
	Auth() AuthService
	Alerts() AlertService
	Complaints() ComplaintService
	Students() StudentService
	Export() ExportService
}

type serviceManager struct {
	auth       AuthService
	alerts     AlertService
	complaints ComplaintService
	students   StudentService
	export     ExportService
}

func NewServiceManager(
	storeClient store.Client,
	publisher events.EventPublisher,
	audit AuditRecorder,
	logger *slog.Logger,
	retry RetryPolicy,
) ServiceManager {
	return &serviceManager{
		auth:       NewAuthService(storeClient, audit, logger, retry),
		alerts:     NewAlertService(storeClient, publisher, audit, logger, retry),
		complaints: NewComplaintService(storeClient, publisher, audit, logger, retry),
		students:   NewStudentService(storeClient, audit, logger, retry),
		export:     NewExportService(audit, logger),
	}
}

func (m *serviceManager) Auth() AuthService            { return m.auth }
func (m *serviceManager) Alerts() AlertService         { return m.alerts }
func (m *serviceManager) Complaints() ComplaintService { return m.complaints }
func (m *serviceManager) Students() StudentService     { return m.students }
func (m *serviceManager) Export() ExportService        { return m.export }
