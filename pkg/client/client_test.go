package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/terra-clan/practice-engine/internal/models"
)

func TestCreateRoomSendsPayloadAndKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/rooms" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Errorf("authorization = %q", got)
		}

		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["scenario"] != "Gym" {
			t.Errorf("payload = %v", payload)
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"data":{"room":{"room_name":"wingman-gym-1a2b3c4d","scenario":"Gym"},"welcome_message":"Hey!"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "sk_test")
	room, err := c.CreateRoom(context.Background(), map[string]string{"scenario": "Gym"})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if room.Room.RoomName != "wingman-gym-1a2b3c4d" || room.Welcome != "Hey!" {
		t.Errorf("room = %+v", room)
	}
}

func TestAPIErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/api/v1/rooms/no%20such/summary" {
			t.Errorf("path = %s", r.URL.EscapedPath())
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":{"code":"room_not_found","message":"room not found"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Summary(context.Background(), "no such")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false", err)
	}
	if apiErr, ok := err.(*APIError); !ok || apiErr.Code != "room_not_found" {
		t.Errorf("err = %#v", err)
	}
}

func TestPersonaEscapesScenario(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/scenarios/Job Interview/persona" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("persona_name") != "Jessica Chen" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"success":true,"data":{"name":"Jessica Chen","voice_model":"aura-luna-en"}}`))
	}))
	defer srv.Close()

	info, err := NewClient(srv.URL, "").Persona(context.Background(), models.ScenarioJobInterview, "Jessica Chen")
	if err != nil {
		t.Fatalf("Persona: %v", err)
	}
	if info.Name != "Jessica Chen" {
		t.Errorf("info = %+v", info)
	}
}

func TestDeleteRoomWithoutData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	if err := NewClient(srv.URL, "").DeleteRoom(context.Background(), "wingman-gym-x"); err != nil {
		t.Errorf("DeleteRoom: %v", err)
	}
}
