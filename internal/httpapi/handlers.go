package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookdist/internal/calc"
	"bookdist/internal/confirm"
	"bookdist/internal/core"
	"bookdist/internal/export"
	"bookdist/internal/records"
	"bookdist/pkg/domain"
)

// GetState handles GET /api/state
func (h *Handler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.State())
}

// ListSchools handles GET /api/schools
func (h *Handler) ListSchools(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Schools())
}

// AddSchool handles POST /api/schools
func (h *Handler) AddSchool(c *gin.Context) {
	school, err := h.svc.AddSchool(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, school)
}

// AddClassToLastSchool handles POST /api/last-school/classes
func (h *Handler) AddClassToLastSchool(c *gin.Context) {
	class, ok, err := h.svc.AddClassToLastSchool(c.Request.Context())
	h.created(c, class, ok, err)
}

// AddClass handles POST /api/schools/:schoolID/classes
func (h *Handler) AddClass(c *gin.Context) {
	class, ok, err := h.svc.AddClass(c.Request.Context(), c.Param("schoolID"))
	h.created(c, class, ok, err)
}

// AddSubject handles POST /api/schools/:schoolID/classes/:classID/subjects
func (h *Handler) AddSubject(c *gin.Context) {
	subject, ok, err := h.svc.AddSubject(c.Request.Context(), c.Param("schoolID"), c.Param("classID"))
	h.created(c, subject, ok, err)
}

// UpdateSchool handles PATCH /api/schools/:schoolID
func (h *Handler) UpdateSchool(c *gin.Context) {
	var patch records.SchoolPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	ok, err := h.svc.UpdateSchool(c.Request.Context(), c.Param("schoolID"), patch)
	h.changed(c, ok, err)
}

// UpdateClass handles PATCH /api/schools/:schoolID/classes/:classID
func (h *Handler) UpdateClass(c *gin.Context) {
	var patch records.ClassPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	ok, err := h.svc.UpdateClass(c.Request.Context(), c.Param("schoolID"), c.Param("classID"), patch)
	h.changed(c, ok, err)
}

// UpdateSubject handles PATCH /api/schools/:schoolID/classes/:classID/subjects/:subjectID
func (h *Handler) UpdateSubject(c *gin.Context) {
	var body subjectPatchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	ok, err := h.svc.UpdateSubject(c.Request.Context(), c.Param("schoolID"), c.Param("classID"), c.Param("subjectID"), body.patch())
	h.changed(c, ok, err)
}

// SetDefaultSubjectValue handles PUT /api/schools/:schoolID/defaults/:field
func (h *Handler) SetDefaultSubjectValue(c *gin.Context) {
	var body defaultValueRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	ok, err := h.svc.SetDefaultSubjectValue(c.Request.Context(), c.Param("schoolID"), c.Param("field"), body.Value.raw)
	h.changed(c, ok, err)
}

// RemoveSchool handles DELETE /api/schools/:schoolID. The removal waits for
// POST /api/confirmation.
func (h *Handler) RemoveSchool(c *gin.Context) {
	h.pending(c, h.svc.RequestRemoveSchool(c.Request.Context(), c.Param("schoolID")))
}

// RemoveClass handles DELETE /api/schools/:schoolID/classes/:classID
func (h *Handler) RemoveClass(c *gin.Context) {
	h.pending(c, h.svc.RequestRemoveClass(c.Request.Context(), c.Param("schoolID"), c.Param("classID")))
}

// RemoveSubject handles DELETE /api/schools/:schoolID/classes/:classID/subjects/:subjectID
func (h *Handler) RemoveSubject(c *gin.Context) {
	h.pending(c, h.svc.RequestRemoveSubject(c.Request.Context(), c.Param("schoolID"), c.Param("classID"), c.Param("subjectID")))
}

// ClassResult handles GET /api/schools/:schoolID/classes/:classID/result.
// ?view=summary returns the summary lines instead of the detailed figures.
func (h *Handler) ClassResult(c *gin.Context) {
	report, err := h.svc.ClassResult(c.Param("schoolID"), c.Param("classID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if c.Query("view") == "summary" {
		c.JSON(http.StatusOK, gin.H{"lines": report.Summary()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Calculate handles GET /api/calc?students=&distribution=&perCarton=
func (h *Handler) Calculate(c *gin.Context) {
	students := records.ParseCount(c.Query("students"))
	distribution := records.ParseCount(c.DefaultQuery("distribution", strconv.Itoa(domain.DefaultDistribution)))
	perCarton := records.ParseCount(c.Query("perCarton"))
	res := calc.Calculate(students, distribution, perCarton)
	c.JSON(http.StatusOK, gin.H{
		"result":     res,
		"incomplete": calc.Incomplete(students, distribution, perCarton),
		"quantity":   res.QuantityLine(),
		"total":      res.TotalLine(),
		"breakdown":  res.BreakdownLine(),
	})
}

// ListLog handles GET /api/log
func (h *Handler) ListLog(c *gin.Context) {
	entries := h.svc.Log()
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// Archive handles POST /api/log
func (h *Handler) Archive(c *gin.Context) {
	entry, err := h.svc.Archive(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetLogEntry handles GET /api/log/:entryID
func (h *Handler) GetLogEntry(c *gin.Context) {
	entry, err := h.svc.LogEntry(c.Param("entryID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteLogEntry handles DELETE /api/log/:entryID
func (h *Handler) DeleteLogEntry(c *gin.Context) {
	h.pending(c, h.svc.RequestDeleteLogEntry(c.Request.Context(), c.Param("entryID")))
}

// ClearLog handles DELETE /api/log
func (h *Handler) ClearLog(c *gin.Context) {
	h.pending(c, h.svc.RequestClearLog(c.Request.Context()))
}

// PendingConfirmation handles GET /api/confirmation
func (h *Handler) PendingConfirmation(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.PendingConfirmation())
}

// Confirm handles POST /api/confirmation
func (h *Handler) Confirm(c *gin.Context) {
	if err := h.svc.Confirm(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.State())
}

// Cancel handles DELETE /api/confirmation
func (h *Handler) Cancel(c *gin.Context) {
	h.svc.Cancel(c.Request.Context())
	c.JSON(http.StatusOK, h.svc.PendingConfirmation())
}

// GetSettings handles GET /api/settings
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Settings())
}

// UpdateSettings handles PUT /api/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	var settings domain.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		badRequest(c, err)
		return
	}
	saved, err := h.svc.UpdateSettings(c.Request.Context(), settings)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// Export handles POST /api/exports and publishes the files to the blob store.
func (h *Handler) Export(c *gin.Context) {
	var body exportRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	formats := make([]export.Format, 0, len(body.Formats))
	for _, raw := range body.Formats {
		f, err := export.ParseFormat(raw)
		if err != nil {
			h.fail(c, err)
			return
		}
		formats = append(formats, f)
	}
	published, err := h.svc.Export(c.Request.Context(), body.SnapshotID, formats...)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exports": published})
}

// Download handles GET /api/export/:format?snapshot=ID and streams the file.
func (h *Handler) Download(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		h.fail(c, err)
		return
	}
	artifact, payload, err := h.svc.Render(c.Request.Context(), c.Query("snapshot"), format)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.FileName}))
	c.Data(http.StatusOK, artifact.ContentType, payload)
}

// ListExports handles GET /api/exports
func (h *Handler) ListExports(c *gin.Context) {
	infos, err := h.svc.PublishedExports(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exports": infos, "count": len(infos)})
}

// DownloadExport handles GET /api/exports/*name and streams a published file.
func (h *Handler) DownloadExport(c *gin.Context) {
	info, rc, err := h.svc.OpenExport(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, rc, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(info.Key)}),
	})
}

// StatExport handles HEAD /api/exports/*name
func (h *Handler) StatExport(c *gin.Context) {
	info, err := h.svc.ExportInfo(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.Status(statusFor(err))
		return
	}
	if info.ContentType != "" {
		c.Header("Content-Type", info.ContentType)
	}
	c.Header("Content-Length", strconv.FormatInt(info.Size, 10))
	if info.ETag != "" {
		c.Header("ETag", `"`+info.ETag+`"`)
	}
	c.Status(http.StatusOK)
}

func (h *Handler) created(c *gin.Context, item any, ok bool, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"changed": false})
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) changed(c *gin.Context, ok bool, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": ok})
}

func (h *Handler) pending(c *gin.Context, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"pending": h.svc.PendingConfirmation()})
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError && h.logger != nil {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrLastSibling), errors.Is(err, confirm.ErrNothingPending):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidSettings), errors.Is(err, records.ErrUnknownField), errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
