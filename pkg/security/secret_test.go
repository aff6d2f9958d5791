package security_test

import (
	"strings"
	"testing"

	"github.com/angelmondragon/configurator-backend/pkg/config"
	"github.com/angelmondragon/configurator-backend/pkg/security"
)

func testParams() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifySecret(t *testing.T) {
	hash, err := security.HashSecret("482913", testParams())
	if err != nil {
		t.Fatalf("HashSecret returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	ok, err := security.VerifySecret("482913", hash)
	if err != nil {
		t.Fatalf("VerifySecret returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifySecret failed for the correct code")
	}

	ok, err = security.VerifySecret("000000", hash)
	if err != nil {
		t.Fatalf("VerifySecret returned error for wrong code: %v", err)
	}
	if ok {
		t.Fatal("VerifySecret returned true for incorrect code")
	}
}

func TestHashSecretRejectsEmpty(t *testing.T) {
	if _, err := security.HashSecret("", testParams()); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestVerifySecretBadHash(t *testing.T) {
	if _, err := security.VerifySecret("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestGenerateNumericCode(t *testing.T) {
	code, err := security.GenerateNumericCode(6)
	if err != nil {
		t.Fatalf("GenerateNumericCode error: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 digits, got %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("expected only digits, got %q", code)
		}
	}
	if _, err := security.GenerateNumericCode(0); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestVerifySecretRejectsTamperedHeader(t *testing.T) {
	hash, err := security.HashSecret("482913", testParams())
	if err != nil {
		t.Fatalf("HashSecret returned error: %v", err)
	}
	for _, tampered := range []string{
		strings.Replace(hash, "v=19", "v=16", 1),
		strings.Replace(hash, "t=1", "t=0", 1),
		strings.Replace(hash, "$argon2id$", "$argon2i$", 1),
	} {
		if _, err := security.VerifySecret("482913", tampered); err == nil {
			t.Fatalf("expected error for %q", tampered)
		}
	}
}

func TestParamsFromConfigBoundsCost(t *testing.T) {
	p := security.ParamsFromConfig(config.PasswordConfig{ArgonMemoryKB: 1, ArgonTime: 99, ArgonParallelism: 0})
	if p.Memory != 8 || p.Time != 10 || p.Parallelism != 1 || p.SaltLen != 8 || p.KeyLen != 16 {
		t.Fatalf("unexpected bounded params %+v", p)
	}
}
