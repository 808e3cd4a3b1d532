package security_test

import (
	"testing"
	"time"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/ethdomperin2018/ai-assist/internal/security"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", "ai-assist", 15*time.Minute)

	user := &domain.User{ID: 12, Username: "alice", Role: domain.UserRoleTeamMember}

	accessToken, err := manager.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}

	if accessToken == "" {
		t.Error("access token is empty")
	}

	claims, err := manager.ValidateAccessToken(accessToken)
	if err != nil {
		t.Fatalf("failed to validate access token: %v", err)
	}

	if claims.UserID != user.ID {
		t.Errorf("user ID mismatch: got %v, want %v", claims.UserID, user.ID)
	}

	if claims.Subject != "12" {
		t.Errorf("subject mismatch: got %q, want %q", claims.Subject, "12")
	}

	if claims.Username != "alice" {
		t.Errorf("username mismatch: got %v, want alice", claims.Username)
	}

	if !claims.IsStaff() {
		t.Error("team member should be staff")
	}
}

func TestJWTManager_InvalidToken(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", "ai-assist", 15*time.Minute)

	// Invalid token format
	_, err := manager.ValidateAccessToken("invalid-token")
	if err == nil {
		t.Error("expected error for invalid token, got nil")
	}

	// Empty token
	_, err = manager.ValidateAccessToken("")
	if err == nil {
		t.Error("expected error for empty token, got nil")
	}

	// Token signed with different secret
	otherManager := security.NewJWTManager("different-secret-key-32-chars!!", "ai-assist", 15*time.Minute)
	token, _ := otherManager.GenerateAccessToken(&domain.User{ID: 1, Role: domain.UserRoleClient})

	_, err = manager.ValidateAccessToken(token)
	if err == nil {
		t.Error("expected error for token signed with different secret, got nil")
	}

	// Token from another issuer
	foreign := security.NewJWTManager("test-secret-key-with-32-chars!!", "someone-else", 15*time.Minute)
	token, _ = foreign.GenerateAccessToken(&domain.User{ID: 1, Role: domain.UserRoleClient})

	_, err = manager.ValidateAccessToken(token)
	if err == nil {
		t.Error("expected error for token from another issuer, got nil")
	}

	// Token without a user
	token, _ = manager.GenerateAccessToken(&domain.User{})
	_, err = manager.ValidateAccessToken(token)
	if err == nil {
		t.Error("expected error for token without user id, got nil")
	}
}

func TestJWTManager_Expired(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", "ai-assist", -time.Minute)

	token, err := manager.GenerateAccessToken(&domain.User{ID: 3, Role: domain.UserRoleClient})
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}

	if _, err := manager.ValidateAccessToken(token); err == nil {
		t.Error("expected error for expired token, got nil")
	}
}

func TestJWTManager_AccessTokenTTL(t *testing.T) {
	accessTTL := 30 * time.Minute
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", "ai-assist", accessTTL)

	if manager.AccessTokenTTL() != accessTTL {
		t.Errorf("access token TTL mismatch: got %v, want %v", manager.AccessTokenTTL(), accessTTL)
	}
}
