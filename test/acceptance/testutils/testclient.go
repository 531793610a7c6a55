package testutils

import (
	"bytes"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	. "github.com/onsi/gomega"
)

type TestClient struct {
	baseURL    url.URL
	authToken  string
	signingKey rsa.PrivateKey
}

func NewTestClient(baseURL url.URL, signingKey rsa.PrivateKey) *TestClient {
	return &TestClient{baseURL: baseURL, signingKey: signingKey}
}

type userMetadata struct {
	PendingHandle      string `json:"pending_handle,omitempty"`
	PendingDisplayName string `json:"pending_display_name,omitempty"`
}

type userClaims struct {
	jwt.RegisteredClaims
	Email        string       `json:"email,omitempty"`
	UserMetadata userMetadata `json:"user_metadata"`
}

func (client *TestClient) authenticateWithAuthToken(signingMethod jwt.SigningMethod, key any, claims jwt.Claims) {
	authToken := jwt.NewWithClaims(signingMethod, claims)
	var err error
	client.authToken, err = authToken.SignedString(key)
	Expect(err).NotTo(HaveOccurred())
}

func newUserClaims(userID uuid.UUID) userClaims {
	return userClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: fmt.Sprintf("%s@example.test", userID),
	}
}

func (client *TestClient) AuthenticateAs(userID uuid.UUID) {
	client.authenticateWithAuthToken(jwt.SigningMethodRS256, &client.signingKey, newUserClaims(userID))
}

// AuthenticateAsNewUser signs in a user whose sign-up metadata carries a
// pending handle and display name.
func (client *TestClient) AuthenticateAsNewUser(userID uuid.UUID, pendingHandle string, pendingDisplayName string) {
	claims := newUserClaims(userID)
	claims.UserMetadata = userMetadata{PendingHandle: pendingHandle, PendingDisplayName: pendingDisplayName}
	client.authenticateWithAuthToken(jwt.SigningMethodRS256, &client.signingKey, claims)
}

func (client *TestClient) AuthenticateWithUnsignedJWT() {
	client.authenticateWithAuthToken(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, newUserClaims(GenerateRandomUUID()))
}

func (client *TestClient) Unauthenticate() {
	client.authToken = ""
}

func (client *TestClient) send(method string, path string, body any) *http.Response {
	target, err := url.ParseRequestURI(path)
	Expect(err).NotTo(HaveOccurred())
	endpoint := client.baseURL.JoinPath(target.Path)
	endpoint.RawQuery = target.RawQuery

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		reader = bytes.NewReader(jsonBody)
	}
	req, err := http.NewRequest(method, endpoint.String(), reader)
	Expect(err).NotTo(HaveOccurred())
	if client.authToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", client.authToken))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	Expect(err).NotTo(HaveOccurred())
	return res
}

func (client *TestClient) Get(path string) *http.Response {
	return client.send(http.MethodGet, path, nil)
}

func (client *TestClient) Post(path string, body any) *http.Response {
	return client.send(http.MethodPost, path, body)
}

func (client *TestClient) Patch(path string, body any) *http.Response {
	return client.send(http.MethodPatch, path, body)
}

func (client *TestClient) Delete(path string) *http.Response {
	return client.send(http.MethodDelete, path, nil)
}

// ReadData decodes the data member of a success envelope into out.
func ReadData(res *http.Response, out any) {
	defer res.Body.Close()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	Expect(json.NewDecoder(res.Body).Decode(&envelope)).To(Succeed())
	Expect(json.Unmarshal(envelope.Data, out)).To(Succeed())
}

func ReadBody(res *http.Response) []byte {
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	Expect(err).NotTo(HaveOccurred())
	return body
}
