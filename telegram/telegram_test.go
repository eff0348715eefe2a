package telegram

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/synqronlabs/canary/attach"
)

type recordedCall struct {
	path   string
	fields map[string]string
	query  map[string]string
	file   string
	data   string
}

func newBotServer(t *testing.T, fail map[string]int) (*httptest.Server, *[]recordedCall) {
	t.Helper()
	var calls []recordedCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := recordedCall{path: r.URL.Path, query: map[string]string{}, fields: map[string]string{}}
		for k := range r.URL.Query() {
			call.query[k] = r.URL.Query().Get(k)
		}
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k := range r.MultipartForm.Value {
				call.fields[k] = r.FormValue(k)
			}
			if f, hdr, err := r.FormFile("document"); err == nil {
				data, _ := io.ReadAll(f)
				f.Close()
				call.file = hdr.Filename
				call.data = string(data)
			}
		}
		calls = append(calls, call)
		chatID := call.query["chat_id"]
		if chatID == "" {
			chatID = call.fields["chat_id"]
		}
		if code, ok := fail[chatID]; ok {
			w.WriteHeader(code)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	return srv, &calls
}

func quietClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := NewClient(cfg, WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestSendMessage_SingleRecipient(t *testing.T) {
	srv, calls := newBotServer(t, nil)
	defer srv.Close()

	c := quietClient(t, Config{Token: "T", ChatIDs: []int64{42}, APIURL: srv.URL})
	if err := c.SendMessage("hello", nil); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if len(*calls) != 1 {
		t.Fatalf("Expected exactly one POST, got %d", len(*calls))
	}
	call := (*calls)[0]
	if call.path != "/botT/sendMessage" {
		t.Errorf("Expected path '/botT/sendMessage', got %q", call.path)
	}
	want := map[string]string{"chat_id": "42", "text": "hello"}
	if !reflect.DeepEqual(call.fields, want) {
		t.Errorf("Expected body fields %v with no optional flags, got %v", want, call.fields)
	}
}

func TestSendMessage_FanOut(t *testing.T) {
	srv, calls := newBotServer(t, nil)
	defer srv.Close()

	c := quietClient(t, Config{Token: "T", ChatIDs: []int64{1, 2}, APIURL: srv.URL})
	if err := c.SendMessage("hi", nil); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if len(*calls) != 2 {
		t.Fatalf("Expected two POSTs, got %d", len(*calls))
	}
	if (*calls)[0].fields["chat_id"] != "1" || (*calls)[1].fields["chat_id"] != "2" {
		t.Errorf("Expected sends in recipient order, got %v then %v",
			(*calls)[0].fields, (*calls)[1].fields)
	}
	if (*calls)[0].fields["text"] != (*calls)[1].fields["text"] {
		t.Error("Expected identical message text across recipients")
	}
}

func TestSendMessage_OptionalFlags(t *testing.T) {
	srv, calls := newBotServer(t, nil)
	defer srv.Close()

	c := quietClient(t, Config{Token: "T", ChatIDs: []int64{42}, APIURL: srv.URL})
	opts := &MessageOptions{DisableNotification: true, DisableWebPagePreview: true}
	if err := c.SendMessage("hello", opts); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	fields := (*calls)[0].fields
	if fields["disable_notification"] != "true" {
		t.Errorf("Expected disable_notification flag, got %v", fields)
	}
	if fields["disable_web_page_preview"] != "true" {
		t.Errorf("Expected disable_web_page_preview flag, got %v", fields)
	}
}

func TestSendMessage_ContinuesAfterRecipientFailure(t *testing.T) {
	// First recipient rejected, second must still be attempted.
	srv, calls := newBotServer(t, map[string]int{"1": http.StatusInternalServerError})
	defer srv.Close()

	c := quietClient(t, Config{Token: "T", ChatIDs: []int64{1, 2}, APIURL: srv.URL})
	err := c.SendMessage("hi", nil)
	if err == nil {
		t.Fatal("Expected joined error for the failed recipient")
	}
	if len(*calls) != 2 {
		t.Fatalf("Expected fan-out to continue after failure, got %d calls", len(*calls))
	}
}

func TestSendDocument(t *testing.T) {
	srv, calls := newBotServer(t, nil)
	defer srv.Close()

	c := quietClient(t, Config{Token: "T", ChatIDs: []int64{42}, APIURL: srv.URL})
	opts := &DocumentOptions{Caption: "crash report", Filename: "crash.txt", DisableNotification: true}
	if err := c.SendDocument(attach.Text("traceback body"), opts); err != nil {
		t.Fatalf("SendDocument failed: %v", err)
	}

	call := (*calls)[0]
	if call.path != "/botT/sendDocument" {
		t.Errorf("Expected path '/botT/sendDocument', got %q", call.path)
	}
	if call.query["chat_id"] != "42" {
		t.Errorf("Expected chat_id query param, got %v", call.query)
	}
	if call.query["caption"] != "crash report" {
		t.Errorf("Expected caption query param, got %v", call.query)
	}
	if call.query["disable_notification"] != "true" {
		t.Errorf("Expected disable_notification query param, got %v", call.query)
	}
	if call.file != "crash.txt" {
		t.Errorf("Expected document filename 'crash.txt', got %q", call.file)
	}
	if call.data != "traceback body" {
		t.Errorf("Expected document content, got %q", call.data)
	}
}

func TestNewClient_ConfigErrors(t *testing.T) {
	if _, err := NewClient(Config{ChatIDs: []int64{1}}); !errors.Is(err, ErrMissingToken) {
		t.Errorf("Expected ErrMissingToken, got %v", err)
	}
	if _, err := NewClient(Config{Token: "T"}); !errors.Is(err, ErrMissingChatID) {
		t.Errorf("Expected ErrMissingChatID, got %v", err)
	}
}

func TestParseChatIDs(t *testing.T) {
	ids, err := ParseChatIDs(" 12, 34 ,,56 ")
	if err != nil {
		t.Fatalf("ParseChatIDs failed: %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{12, 34, 56}) {
		t.Errorf("Expected [12 34 56], got %v", ids)
	}

	if _, err := ParseChatIDs("12,abc"); !errors.Is(err, ErrInvalidChatID) {
		t.Errorf("Expected ErrInvalidChatID for non-numeric segment, got %v", err)
	}
}

func TestAPIBaseURL_TrailingSlashStripped(t *testing.T) {
	srv, calls := newBotServer(t, nil)
	defer srv.Close()

	c := quietClient(t, Config{Token: "T", ChatIDs: []int64{1}, APIURL: srv.URL + "/"})
	if err := c.SendMessage("x", nil); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if (*calls)[0].path != "/botT/sendMessage" {
		t.Errorf("Expected normalized path, got %q", (*calls)[0].path)
	}
}
