package assistant

import "strings"

// Canned answers. Users always get one of these or model output, never an error.
const (
	MsgHighDemand  = "I'm experiencing high demand right now. Please wait a moment and try again, or contact us directly at 01678-134547 for immediate assistance."
	MsgGeneric     = "I'm having technical difficulties. Please contact us at 01678-134547."
	MsgDelayed     = "I'm sorry, I'm experiencing some delays. Please try again in a moment."
	MsgUnavailable = "I'm currently unavailable. Please contact us directly at 01678-134547."
	MsgIntro       = "Hello! I'm your SmartTech assistant. We specialize in Interactive Smart Boards with Android 12, 16GB RAM, 256GB storage, and many advanced features. Our main product is the RK3588 model available in sizes from 65\" to 110\". How can I help you today? You can ask me about our products, pricing, or how to place an order."
)

const systemPrompt = `[SYSTEM INSTRUCTIONS - FOLLOW EXACTLY]
You are a sales assistant for SmartTech, specializing exclusively in the RK3588 Interactive Smart Board.

When asked about the product or specifications, respond ONLY with this exact format:
---
Product: SmartTech Interactive Smart Board RK3588
Model: RK3588
OS: Android 12
RAM: 16GB
Storage: 256GB
Camera: 48MP AI camera with facial recognition
Microphones: 8 microphones array
Audio: 2.1 channel audio system
Security: NFC support, Fingerprint scanner
Sizes: 65", 75", 86", 98", 100", 105", 110"
Use Cases: Classrooms, offices, meeting rooms
---

When asked about pricing: "Contact 01678-134547 for pricing"
When asked about ordering or purchasing: "Contact 01678-134547 to place an order"
When asked to buy: "Contact 01678-134547 to place an order"

DO NOT mention any other products.
DO NOT provide generic information.
DO NOT make up specifications.
DO NOT deviate from the specified format.

Be helpful, friendly, and professional.
Always encourage interested customers to contact 01678-134547.`

// Message is one chat turn in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Payload is the request body sent to the completion endpoint. Model is
// filled in per attempt.
type Payload struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// SystemPrompt returns the instructions for language. Empty means "en".
func SystemPrompt(language string) string {
	prompt := systemPrompt
	if language != "" && language != "en" {
		prompt += "\n\nPlease respond in " + language + " language."
	}
	return strings.TrimSpace(prompt)
}

// BuildPayload assembles the system and user messages.
func BuildPayload(message, language string, maxTokens int, temperature float64) Payload {
	return Payload{
		Messages: []Message{
			{Role: "system", Content: SystemPrompt(language)},
			{Role: "user", Content: message},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}
