package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	gws "github.com/gorilla/websocket"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	chatapp "blog_chat_service/internal/chat/app"
	chatdomain "blog_chat_service/internal/chat/domain"
	chatrepo "blog_chat_service/internal/chat/repository"
	memberdomain "blog_chat_service/internal/member/domain"
	memberrepo "blog_chat_service/internal/member/repository"
	"blog_chat_service/pkg/database"
	"blog_chat_service/pkg/encrypt"
	"blog_chat_service/pkg/logger"
	testtool "blog_chat_service/pkg/test_tool"
	"blog_chat_service/pkg/token"
)

var (
	postgresContainer testcontainers.Container
	redisContainer    testcontainers.Container
	chatApp           *fiber.App

	pool        *pgxpool.Pool
	roomRepo    chatrepo.RoomRepository
	messageRepo chatrepo.MessageRepository

	alice, bob, carol, staff *memberdomain.Member
)

const baseURL = "http://127.0.0.1:8082"

// noopAvatars stands in for MinIO, which the chat flow only touches to
// resolve the counterparty's avatar URL.
type noopAvatars struct{}

func (noopAvatars) Upload(ctx context.Context, object string, r io.Reader, size int64, contentType string) error {
	return nil
}

func (noopAvatars) URL(ctx context.Context, object string) (string, error) {
	return "", nil
}

func TestMain(m *testing.M) {
	logger.SetNewNop()
	ctx := context.Background()
	var err error

	postgresContainer, postgresHost, postgresPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image: "postgres:latest",
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	})
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	redisContainer, redisHost, redisPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:latest",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	})
	if err != nil {
		log.Fatalf("Failed to start Redis container: %v", err)
	}

	pool, err = database.NewDatabaseConnection(database.Connection{
		ConnectStr:    fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", postgresHost, postgresPort),
		RetryCount:    5,
		RetryInterval: 5,
	})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	if err := memberrepo.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("member schema setup failed: %v", err)
	}
	if err := chatrepo.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("chat schema setup failed: %v", err)
	}

	redisClient, err := database.NewRedisClient(fmt.Sprintf("%s:%s", redisHost, redisPort), 0)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	members := memberrepo.NewMemberRepository(pool)
	hashed, err := encrypt.HashPassword("Passw0rd")
	if err != nil {
		log.Fatalf("hash password failed: %v", err)
	}
	seed := func(username string, isStaff bool) *memberdomain.Member {
		m := &memberdomain.Member{
			Username: username,
			Email:    username + "@example.com",
			Password: hashed,
			IsStaff:  isStaff,
		}
		if err := members.Create(ctx, m); err != nil {
			log.Fatalf("seed member %s failed: %v", username, err)
		}
		return m
	}
	alice = seed("alice", false)
	bob = seed("bob", false)
	carol = seed("carol", false)
	staff = seed("helpdesk", true)

	roomRepo = chatrepo.NewRoomRepository(pool)
	messageRepo = chatrepo.NewMessageRepository(pool)
	pubsub := chatrepo.NewRedisPubSub(redisClient)
	directory := chatapp.NewRoomDirectory(roomRepo)

	wsHandler := chatapp.NewChatWebsocketHandler(directory, messageRepo, members, noopAvatars{}, pubsub)
	restHandler := chatapp.NewChatHTTPHandler(roomRepo, messageRepo)

	chatApp = fiber.New()
	RegisterRoutes(chatApp, wsHandler, restHandler)

	go func() {
		if err := chatApp.Listen(":8082"); err != nil {
			log.Fatalf("Failed to start Fiber: %v", err)
		}
	}()
	time.Sleep(2 * time.Second)

	code := m.Run()

	_ = chatApp.Shutdown()
	_ = postgresContainer.Terminate(ctx)
	_ = redisContainer.Terminate(ctx)
	pool.Close()

	os.Exit(code)
}

func memberToken(t *testing.T, m *memberdomain.Member) string {
	role := token.RoleMember
	if m.IsStaff {
		role = token.RoleStaff
	}
	jwt, err := token.GenerateJWT(m.ID, string(role), "blog_chat_service")
	require.NoError(t, err)
	return jwt
}

func dialWS(t *testing.T, target string, jwt string) *gws.Conn {
	url := fmt.Sprintf("ws://127.0.0.1:8082/ws/%s", target)
	if jwt != "" {
		url += "?auth=" + jwt
	}
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readEstablished(t *testing.T, conn *gws.Conn) chatdomain.ConnectionEstablishedFrame {
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame chatdomain.ConnectionEstablishedFrame
	require.NoError(t, json.Unmarshal(raw, &frame))
	require.Equal(t, chatdomain.FrameConnectionEstablished, frame.Type, "unexpected frame: %s", raw)
	return frame
}

func readChat(t *testing.T, conn *gws.Conn) chatdomain.ChatFrame {
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame chatdomain.ChatFrame
	require.NoError(t, json.Unmarshal(raw, &frame))
	require.Equal(t, chatdomain.FrameChat, frame.Type, "unexpected frame: %s", raw)
	return frame
}

func readError(t *testing.T, conn *gws.Conn) chatdomain.ErrorFrame {
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame chatdomain.ErrorFrame
	require.NoError(t, json.Unmarshal(raw, &frame))
	require.Equal(t, chatdomain.FrameError, frame.Type, "unexpected frame: %s", raw)
	return frame
}

func sendContent(t *testing.T, conn *gws.Conn, content string) {
	payload, err := json.Marshal(chatdomain.InboundFrame{Content: content})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(gws.TextMessage, payload))
}

func TestWebsocket_EchoThenReplay(t *testing.T) {
	jwt := memberToken(t, alice)

	conn := dialWS(t, fmt.Sprint(bob.ID), jwt)
	established := readEstablished(t, conn)
	assert.Equal(t, "bob", established.Participant.Username)
	assert.Empty(t, established.History)

	sendContent(t, conn, "hi")
	echo := readChat(t, conn)
	assert.Equal(t, "hi", echo.Content)
	assert.Equal(t, alice.ID, echo.SenderID)
	conn.Close()

	// reconnect: the room created by the first message bounds the replay
	conn = dialWS(t, fmt.Sprint(bob.ID), jwt)
	defer conn.Close()
	established = readEstablished(t, conn)
	require.Len(t, established.History, 1)
	assert.Equal(t, "hi", established.History[0].Content)
	assert.Equal(t, alice.ID, established.History[0].SenderID)
}

func TestWebsocket_FanOutBetweenPeers(t *testing.T) {
	aliceConn := dialWS(t, fmt.Sprint(bob.ID), memberToken(t, alice))
	defer aliceConn.Close()
	readEstablished(t, aliceConn)

	bobConn := dialWS(t, fmt.Sprint(alice.ID), memberToken(t, bob))
	defer bobConn.Close()
	readEstablished(t, bobConn)

	sendContent(t, aliceConn, "how are you")

	for _, conn := range []*gws.Conn{aliceConn, bobConn} {
		frame := readChat(t, conn)
		assert.Equal(t, "how are you", frame.Content)
		assert.Equal(t, alice.ID, frame.SenderID)
	}
}

func TestWebsocket_Unauthenticated(t *testing.T) {
	conn := dialWS(t, fmt.Sprint(bob.ID), "")
	defer conn.Close()

	frame := readError(t, conn)
	assert.Equal(t, "authentication failed", frame.Message)

	// error frame is terminal
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestWebsocket_SelfChat(t *testing.T) {
	conn := dialWS(t, fmt.Sprint(alice.ID), memberToken(t, alice))
	defer conn.Close()

	frame := readError(t, conn)
	assert.Equal(t, "cannot chat with yourself", frame.Message)
}

func TestWebsocket_UnknownContact(t *testing.T) {
	conn := dialWS(t, "999999", memberToken(t, alice))
	defer conn.Close()

	frame := readError(t, conn)
	assert.Equal(t, "no user found", frame.Message)
}

func TestWebsocket_SupportRouting(t *testing.T) {
	for _, target := range []string{"support", "0"} {
		conn := dialWS(t, target, memberToken(t, carol))
		established := readEstablished(t, conn)
		assert.Equal(t, staff.Username, established.Participant.Username)
		conn.Close()
	}
}

func TestREST_RoomLifecycle(t *testing.T) {
	// materialize a carol/bob room over the socket
	conn := dialWS(t, fmt.Sprint(bob.ID), memberToken(t, carol))
	readEstablished(t, conn)
	sendContent(t, conn, "rest test")
	readChat(t, conn)
	conn.Close()

	jwt := memberToken(t, carol)
	resp, err := http.Get(fmt.Sprintf("%s/chats/?auth=%s", baseURL, jwt))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rooms []struct {
		ID             int64  `json:"id"`
		Name           string `json:"name"`
		CounterpartyID int64  `json:"counterparty_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rooms))
	var roomID int64
	for _, room := range rooms {
		if room.CounterpartyID == bob.ID {
			roomID = room.ID
		}
	}
	require.NotZero(t, roomID, "carol/bob room not listed")

	resp, err = http.Get(fmt.Sprintf("%s/chats/%d/messages?auth=%s", baseURL, roomID, jwt))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history []chatdomain.HistoryEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.NotEmpty(t, history)
	assert.Equal(t, "rest test", history[len(history)-1].Content)

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/chats/%d?auth=%s", baseURL, roomID, jwt), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// the owned side is gone, so the history view now 404s
	resp, err = http.Get(fmt.Sprintf("%s/chats/%d/messages?auth=%s", baseURL, roomID, jwt))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestREST_RejectsMissingToken(t *testing.T) {
	resp, err := http.Get(baseURL + "/chats/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEnsurePair_OppositeOrientationsConverge(t *testing.T) {
	ctx := context.Background()
	at := time.Now().UTC()

	// each side shows up with the name its own session drew
	aliceName := chatdomain.NewRoomName()
	staffName := chatdomain.NewRoomName()

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := roomRepo.EnsurePair(ctx, alice.ID, staff.ID, aliceName, at)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := roomRepo.EnsurePair(ctx, staff.ID, alice.ID, staffName, at)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	// a persistence race recovers inside the repository, never as an error
	for err := range errs {
		assert.NoError(t, err)
	}

	roomAB, err := roomRepo.FindPairRoom(ctx, alice.ID, staff.ID)
	require.NoError(t, err)
	require.NotNil(t, roomAB)
	roomBA, err := roomRepo.FindPairRoom(ctx, staff.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, roomBA)

	// both orientations settled on one winner's name and timestamp
	assert.Equal(t, roomAB.Name, roomBA.Name)
	assert.Contains(t, []string{aliceName, staffName}, roomAB.Name)
	assert.True(t, roomAB.CreatedAt.Equal(roomBA.CreatedAt))
}

func TestHistory_TieBreakOnEqualTimestamps(t *testing.T) {
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Second)
	for _, content := range []string{"first", "second", "third"} {
		_, err := pool.Exec(ctx,
			`INSERT INTO chat_messages (content, sender_id, recipient_id, created_at)
			 VALUES ($1, $2, $3, $4)`,
			content, carol.ID, staff.ID, at)
		require.NoError(t, err)
	}

	history, err := messageRepo.HistorySince(ctx, carol.ID, staff.ID, at.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[1].Content)
	assert.Equal(t, "third", history[2].Content)
}
