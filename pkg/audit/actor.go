package audit

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// ActorType discriminates the Actor tagged union.
type ActorType string

const (
	ActorTypeUser      ActorType = "user"
	ActorTypeSystem    ActorType = "system"
	ActorTypeAPIClient ActorType = "apiclient"
	ActorTypeBackend   ActorType = "backend"
	ActorTypeUnknown   ActorType = "unknown"
)

// Actor is a tagged union identifying who performed an event. Only the
// fields relevant to Type are meaningful; construct via the New*Actor
// helpers rather than composing the struct by hand.
type Actor struct {
	Type ActorType

	// User fields.
	UserID    string
	UserName  string
	SessionID string

	// System fields.
	Component string
	ProcessID string

	// ApiClient fields.
	ClientID   string
	ClientName string

	// Backend fields.
	BackendName string
	ModelName   string
}

// NewUserActor builds a User actor. name and session are optional.
func NewUserActor(id, name, session string) Actor {
	return Actor{Type: ActorTypeUser, UserID: id, UserName: name, SessionID: session}
}

// NewSystemActor builds a System actor. pid is optional.
func NewSystemActor(component, pid string) Actor {
	return Actor{Type: ActorTypeSystem, Component: component, ProcessID: pid}
}

// NewAPIClientActor builds an ApiClient actor. name is optional.
func NewAPIClientActor(id, name string) Actor {
	return Actor{Type: ActorTypeAPIClient, ClientID: id, ClientName: name}
}

// NewBackendActor builds a Backend actor. model is optional.
func NewBackendActor(name, model string) Actor {
	return Actor{Type: ActorTypeBackend, BackendName: name, ModelName: model}
}

// UnknownActor returns the Unknown actor variant.
func UnknownActor() Actor { return Actor{Type: ActorTypeUnknown} }

// Identifier returns the deterministic derived string identifying this
// actor, per the actor-identifier invariant:
//
//	user      -> name-or-id
//	system    -> "system:"+component
//	apiclient -> name-or-id
//	backend   -> "backend:"+name
//	unknown   -> "unknown"
func (a Actor) Identifier() string {
	switch a.Type {
	case ActorTypeUser:
		if a.UserName != "" {
			return a.UserName
		}
		return a.UserID
	case ActorTypeSystem:
		return "system:" + a.Component
	case ActorTypeAPIClient:
		if a.ClientName != "" {
			return a.ClientName
		}
		return a.ClientID
	case ActorTypeBackend:
		return "backend:" + a.BackendName
	default:
		return "unknown"
	}
}

// ID returns the type-specific identifier column value used by the Indexed
// Store (actor_id): UserID, Component, ClientID, or BackendName depending
// on Type.
func (a Actor) ID() string {
	switch a.Type {
	case ActorTypeUser:
		return a.UserID
	case ActorTypeSystem:
		return a.Component
	case ActorTypeAPIClient:
		return a.ClientID
	case ActorTypeBackend:
		return a.BackendName
	default:
		return ""
	}
}

// Name returns the type-specific display name column value (actor_name).
func (a Actor) Name() string {
	switch a.Type {
	case ActorTypeUser:
		return a.UserName
	case ActorTypeAPIClient:
		return a.ClientName
	case ActorTypeBackend:
		return a.ModelName
	default:
		return ""
	}
}

type actorWire struct {
	Type      ActorType `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	UserName  string    `json:"user_name,omitempty"`
	SessionID string    `json:"session_id,omitempty"`

	Component string `json:"component,omitempty"`
	ProcessID string `json:"process_id,omitempty"`

	ClientID   string `json:"client_id,omitempty"`
	ClientName string `json:"client_name,omitempty"`

	BackendName string `json:"backend_name,omitempty"`
	ModelName   string `json:"model_name,omitempty"`
}

// MarshalJSON renders the discriminator-tagged object form described in
// the design notes: {"type": "user", ...}.
func (a Actor) MarshalJSON() ([]byte, error) {
	return json.Marshal(actorWire{
		Type:        a.Type,
		UserID:      a.UserID,
		UserName:    a.UserName,
		SessionID:   a.SessionID,
		Component:   a.Component,
		ProcessID:   a.ProcessID,
		ClientID:    a.ClientID,
		ClientName:  a.ClientName,
		BackendName: a.BackendName,
		ModelName:   a.ModelName,
	})
}

// UnmarshalJSON parses the discriminator-tagged object form, rejecting any
// Type outside the closed set rather than silently coercing it.
func (a *Actor) UnmarshalJSON(b []byte) error {
	var w actorWire
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("unmarshal actor: %w", err)
	}
	switch w.Type {
	case ActorTypeUser, ActorTypeSystem, ActorTypeAPIClient, ActorTypeBackend, ActorTypeUnknown:
	default:
		return newDeserializationError("actor.type", string(w.Type))
	}
	*a = Actor{
		Type:        w.Type,
		UserID:      w.UserID,
		UserName:    w.UserName,
		SessionID:   w.SessionID,
		Component:   w.Component,
		ProcessID:   w.ProcessID,
		ClientID:    w.ClientID,
		ClientName:  w.ClientName,
		BackendName: w.BackendName,
		ModelName:   w.ModelName,
	}
	return nil
}
