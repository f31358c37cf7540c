package kestrel

import (
	"net/url"
	"strconv"
)

type ListParams struct {
	Page     int
	PageSize int
}

func (p *ListParams) values() url.Values {
	if p == nil {
		return nil
	}

	v := make(url.Values)

	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(p.PageSize))
	}

	return v
}

type NotificationPage struct {
	Items       []Notification `json:"items"`
	TotalCount  int            `json:"total_count"`
	UnreadCount int            `json:"unread_count"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	HasMore     bool           `json:"has_more"`
}
