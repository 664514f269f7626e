package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"perplexacare/internal/chat"
	"perplexacare/internal/domain"
	"perplexacare/internal/healthagent"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	logger := zap.NewExample()
	defer logger.Sync()

	userID := os.Getenv("CHAT_USER_ID")
	if userID == "" {
		userID = "guest-" + uuid.NewString()
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		log.Fatal(err)
	}

	// Solo necesita el upstream; no toca base de datos ni redis.
	agent := healthagent.NewHTTPClient(os.Getenv("HEALTH_AGENT_API"), logger)
	conversation := chat.NewConversation(agent, userID)

	fmt.Println("PerplexaCare chat. Escribe 'salir' para terminar, 'reiniciar' para limpiar la sesión.")
	for {
		fmt.Print("Tu > ")
		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "salir") || strings.EqualFold(text, "exit") {
			fmt.Println("Hasta luego.")
			return
		}
		if strings.EqualFold(text, "reiniciar") || strings.EqualFold(text, "reset") {
			conversation.Reset()
			fmt.Println("Sesión reiniciada.")
			continue
		}

		msg, err := conversation.SendMessage(ctx, text)
		if err != nil {
			fmt.Printf("! %s\n", conversation.Err())
			continue
		}
		printAgentMessage(renderer, msg)
	}
}

func printAgentMessage(renderer *glamour.TermRenderer, msg domain.ChatMessage) {
	rendered, err := renderer.Render(msg.Content)
	if err != nil {
		rendered = msg.Content + "\n"
	}
	fmt.Print(rendered)

	if len(msg.References) > 0 {
		fmt.Println("Referencias:")
		for i, ref := range msg.References {
			fmt.Printf("  [%d] %s\n", i+1, ref)
		}
	}
	if msg.IsEmergency {
		fmt.Println("(posible emergencia: busca atención médica inmediata)")
	}
	if msg.IsQuestion {
		fmt.Println("(el agente espera tu respuesta)")
	}
}
