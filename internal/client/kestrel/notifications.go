package kestrel

import (
	"context"
	"net/http"
)

type NotificationService interface {
	List(ctx context.Context, params *ListParams) (*NotificationPage, error)
	Create(ctx context.Context, n *Notification) (*Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkUnread(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
}

type notificationService struct {
	client *Client
}

var _ NotificationService = (*notificationService)(nil)

func (s *notificationService) List(ctx context.Context, params *ListParams) (*NotificationPage, error) {
	var page NotificationPage
	if err := s.client.do(ctx, http.MethodGet, "/api/notifications", params.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *notificationService) Create(ctx context.Context, n *Notification) (*Notification, error) {
	var created Notification
	if err := s.client.do(ctx, http.MethodPost, "/api/notifications", nil, n, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodPut, "/api/notifications/"+id+"/read", nil, nil, nil)
}

func (s *notificationService) MarkUnread(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodPut, "/api/notifications/"+id+"/unread", nil, nil, nil)
}

func (s *notificationService) MarkAllRead(ctx context.Context) error {
	return s.client.do(ctx, http.MethodPut, "/api/notifications/read-all", nil, nil, nil)
}

func (s *notificationService) Delete(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/api/notifications/"+id, nil, nil, nil)
}
