// Package http exposes the report collection and the sync subsystem over a
// small JSON API: report CRUD under /api/reports, sync configuration and
// manual pull/push under /api/sync, and the buffered UI notices under
// /api/notices.
package http
