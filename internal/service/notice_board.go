package service

import (
	"sync"
	"time"

	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/models"
)

// Notice kinds recorded by the board.
const (
	NoticeNewReports = "new_reports"
	NoticeError      = "error"
	NoticeRender     = "render"
	NoticeRefresh    = "refresh"
)

// noticeBoardCapacity bounds the buffer; the oldest notices are dropped
// first when no client drains them.
const noticeBoardCapacity = 100

// Notice is a single UI event produced by the sync subsystem.
type Notice struct {
	Kind     string         `json:"kind"`
	Message  string         `json:"message,omitempty"`
	Count    int            `json:"count,omitempty"`
	ReportID string         `json:"reportId,omitempty"`
	Report   *models.Report `json:"report,omitempty"`
	At       time.Time      `json:"at"`
}

// NoticeBoard is the [Notifier] used by the HTTP host: it buffers notices
// until a client drains them via the notices endpoint. The original app
// rendered these as toasts; a headless host gets a pollable queue instead.
type NoticeBoard struct {
	logger *logger.Logger

	mu      sync.Mutex
	notices []Notice
}

func NewNoticeBoard(log *logger.Logger) *NoticeBoard {
	return &NoticeBoard{logger: log}
}

// NotifyNewReports implements [Notifier].
func (b *NoticeBoard) NotifyNewReports(count int) {
	b.logger.Info().Int("count", count).Msg("new reports synced")
	b.append(Notice{Kind: NoticeNewReports, Count: count, At: time.Now()})
}

// NotifyError implements [Notifier].
func (b *NoticeBoard) NotifyError(message string) {
	b.logger.Warn().Str("message", message).Msg("sync notice")
	b.append(Notice{Kind: NoticeError, Message: message, At: time.Now()})
}

// RenderReport implements [Notifier].
func (b *NoticeBoard) RenderReport(report models.Report) {
	b.append(Notice{Kind: NoticeRender, ReportID: report.ID, Report: &report, At: time.Now()})
}

// RefreshReportView implements [Notifier].
func (b *NoticeBoard) RefreshReportView(id string) {
	b.append(Notice{Kind: NoticeRefresh, ReportID: id, At: time.Now()})
}

// Drain returns all buffered notices and empties the board.
func (b *NoticeBoard) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	drained := b.notices
	b.notices = nil
	return drained
}

func (b *NoticeBoard) append(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.notices = append(b.notices, n)
	if len(b.notices) > noticeBoardCapacity {
		b.notices = b.notices[len(b.notices)-noticeBoardCapacity:]
	}
}
