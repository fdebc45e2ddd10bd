// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package kernel

import "context"

// EventController is dispatched once a request's controller is selected.
const EventController = "kernel.controller"

// ControllerEvent describes the controller selected for a request.
type ControllerEvent struct {
	Request    *Request
	Route      string
	Controller any
}

// Listener handles a dispatched event.
type Listener func(ctx context.Context, event *ControllerEvent)

// EventDispatcher delivers events to listeners in subscription order.
type EventDispatcher struct {
	listeners map[string][]Listener
}

// AddListener subscribes l to name.
func (d *EventDispatcher) AddListener(name string, l Listener) {
	d.listeners[name] = append(d.listeners[name], l)
}

// Dispatch delivers event to the listeners of name.
func (d *EventDispatcher) Dispatch(ctx context.Context, name string, event *ControllerEvent) {
	for _, l := range d.listeners[name] {
		l(ctx, event)
	}
}

// Container holds kernel services shared with bundles.
type Container struct {
	events   *EventDispatcher
	services map[string]any
}

// NewContainer creates an empty container with an event dispatcher.
func NewContainer() *Container {
	return &Container{
		events:   &EventDispatcher{listeners: make(map[string][]Listener)},
		services: make(map[string]any),
	}
}

// Events returns the event dispatcher.
func (c *Container) Events() *EventDispatcher {
	return c.events
}

// Set registers a service.
func (c *Container) Set(id string, service any) {
	c.services[id] = service
}

// Get returns a registered service.
func (c *Container) Get(id string) (any, bool) {
	s, ok := c.services[id]
	return s, ok
}
