// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/sagov/internal/app/store/audit"
	"github.com/dalemusser/sagov/internal/app/system/paging"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
)

const basePath = "/intranet/admin/journal"

// ServeList handles GET /intranet/admin/journal: the filtered journal,
// newest first, one page at a time.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "journal list")
	defer cancel()

	category := strings.TrimSpace(query.Get(r, "category"))
	eventType := strings.TrimSpace(query.Get(r, "event_type"))
	startDate := strings.TrimSpace(query.Get(r, "start_date"))
	endDate := strings.TrimSpace(query.Get(r, "end_date"))
	start := paging.ParseStart(r)

	filter := audit.QueryFilter{
		Category:  category,
		EventType: eventType,
		Limit:     paging.LimitPlusOne(),
		Offset:    paging.Skip(start),
	}
	if t, err := time.Parse("2006-01-02", startDate); err == nil {
		filter.StartTime = &t
	}
	if t, err := time.Parse("2006-01-02", endDate); err == nil {
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	store := audit.New(h.DB)
	events, err := store.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events failed", err, "Impossible de charger le journal.", "/intranet")
		return
	}
	total, err := store.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count audit events failed", err, "Impossible de charger le journal.", "/intranet")
		return
	}

	page := paging.TrimPage(&events, start)
	rng := paging.ComputeRange(start, len(events))

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		actor := e.ActorName
		if actor == "" && e.ActorID != nil {
			actor = e.ActorID.Hex()
		}
		items = append(items, listItem{
			When:      e.Timestamp.UTC().Format("02/01/2006 15:04:05"),
			Category:  e.Category,
			EventType: e.EventType,
			Label:     eventLabel(e.EventType),
			Actor:     actor,
			Target:    e.Target,
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
			Details:   e.Details,
		})
	}

	pageURL := func(s int) string {
		v := url.Values{}
		for k, val := range map[string]string{
			"category":   category,
			"event_type": eventType,
			"start_date": startDate,
			"end_date":   endDate,
		} {
			if val != "" {
				v.Set(k, val)
			}
		}
		if s > 1 {
			v.Set("start", strconv.Itoa(s))
		}
		if len(v) == 0 {
			return basePath
		}
		return basePath + "?" + v.Encode()
	}

	templates.Render(w, r, "journal_list", listData{
		BaseVM:     viewdata.NewBaseVM(r, "Journal", "/intranet"),
		Items:      items,
		Category:   category,
		EventType:  eventType,
		StartDate:  startDate,
		EndDate:    endDate,
		Categories: categoryLabels,
		EventTypes: eventTypesFor(category),
		Total:      total,
		RangeStart: rng.Start,
		RangeEnd:   rng.End,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		PrevURL:    pageURL(rng.PrevStart),
		NextURL:    pageURL(rng.NextStart),
	})
}
