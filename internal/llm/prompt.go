package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
)

// PlannerSystemPrompt frames the model as a project planner
const PlannerSystemPrompt = "You are a professional project planner with expertise in various domains. Respond with a single JSON object and nothing else."

// BuildPlanPrompt creates the prompt that turns a client request into a step plan
func BuildPlanPrompt(description string) string {
	return fmt.Sprintf(`You are an expert personal assistant tasked with analyzing client requests and creating actionable plans.
Please analyze the following request and create a detailed plan:

Request: %q

Create a JSON response with the following structure:
- plan: An array of steps with fields:
  * step: A description of what needs to be done
  * assignedTo: Either "ai" or "human" based on who should handle it
  * estimatedHours: Approximate hours to complete this step
- costEstimateRange: Object with min and max cost in USD
- summary: A brief, clear summary of the overall plan`, description)
}

// PlanRequest builds the completion request for a request description
func PlanRequest(description string) Request {
	return Request{
		System: PlannerSystemPrompt,
		Prompt: BuildPlanPrompt(description),
		JSON:   true,
	}
}

// ParseAnalysis decodes a plan response, tolerating code fences and prose around the object
func ParseAnalysis(content string) (*domain.AIAnalysis, error) {
	raw := ExtractJSON(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var analysis domain.AIAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}

	return &analysis, nil
}

// ExtractJSON extracts a JSON object from LLM output
func ExtractJSON(content string) string {
	// Try to extract from markdown code blocks
	if block := extractFromCodeBlock(content, "```json", "```"); block != "" {
		return block
	}
	if block := extractFromCodeBlock(content, "```", "```"); block != "" {
		return block
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end < start {
		return ""
	}
	return content[start : end+1]
}

func extractFromCodeBlock(content, startMarker, endMarker string) string {
	startIdx := strings.Index(content, startMarker)
	if startIdx == -1 {
		return ""
	}

	contentStart := startIdx + len(startMarker)
	// Skip newline after marker
	if contentStart < len(content) && content[contentStart] == '\n' {
		contentStart++
	}

	endIdx := strings.Index(content[contentStart:], endMarker)
	if endIdx == -1 {
		return ""
	}

	return strings.TrimSpace(content[contentStart : contentStart+endIdx])
}

// ContractSystemPrompt frames the model as a contract drafter
const ContractSystemPrompt = "You are a professional contract drafter with legal expertise."

// BuildContractPrompt creates the prompt that drafts a service contract from project details
func BuildContractPrompt(details string) string {
	return fmt.Sprintf(`Create a professional service contract based on the following project details:

%q

The contract should include:
1. Scope of work
2. Timeline
3. Payment terms
4. Deliverables
5. Standard legal protections for both parties`, details)
}

// ContractRequest builds the completion request for a contract draft
func ContractRequest(details string) Request {
	return Request{
		System: ContractSystemPrompt,
		Prompt: BuildContractPrompt(details),
	}
}

// FallbackReply is sent when the model returns an empty chat answer
const FallbackReply = "I'm not sure how to respond to that. Could you provide more information?"

// BuildAssistantSystemPrompt frames the model as the assistant on one client request
func BuildAssistantSystemPrompt(requestContext string) string {
	return fmt.Sprintf(`You are a helpful personal assistant at a company handling a client's request.
Here's the context of their request: %q

Please respond to the latest message in a helpful, professional manner.`, requestContext)
}

// IsAssistantSender reports whether a message was written by the assistant
func IsAssistantSender(senderID string) bool {
	return senderID == "ai" || senderID == "assistant"
}

// BuildChatPrompt renders the conversation as a transcript ending with the assistant's turn
func BuildChatPrompt(conversation []domain.Message) string {
	var b strings.Builder
	for _, m := range conversation {
		if IsAssistantSender(m.SenderID) {
			b.WriteString("Assistant: ")
		} else {
			b.WriteString("Client: ")
		}
		b.WriteString(strings.TrimSpace(m.Content))
		b.WriteString("\n")
	}
	b.WriteString("Assistant:")
	return b.String()
}

// ChatRequest builds the completion request for the next assistant reply
func ChatRequest(conversation []domain.Message, requestContext string) Request {
	return Request{
		System: BuildAssistantSystemPrompt(requestContext),
		Prompt: BuildChatPrompt(conversation),
	}
}
