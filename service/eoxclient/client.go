/*
 * @module service/eoxclient/client
 * @description Cisco EoX API 客户端，OAuth2 客户端凭证认证、分页查询与限速惰性流
 * @architecture 分层架构 - 外部服务接入层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 获取令牌(缓存/过期刷新) -> 分页查询 -> 流式产出记录 -> 页间限速等待
 * @rules 单页请求超时 30s；瞬时错误重试一次；认证失败对整次调用致命；
 *        查询串中的 PID 不做任何解释，URL 编码透传
 * @dependencies net/http, productdb-service/service/settings
 * @refs service/sync_engine/sync_service.go
 */

package eoxclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultTokenURL = "https://id.cisco.com/oauth2/default/v1/token"
	defaultAPIBase  = "https://apix.cisco.com/supporttools/eox/rest/5"

	pageRequestTimeout = 30 * time.Second
	// 令牌提前此时长视为过期，避免边界上的 401
	tokenExpiryMargin = 60 * time.Second
)

// AuthError 认证失败错误，对整次同步调用致命
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("EoX API 认证失败 (HTTP %d): %s", e.StatusCode, e.Body)
}

// IsAuthError 判断错误链上是否为认证失败
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// CredentialProvider 提供 API 凭证，由设置服务实现
type CredentialProvider interface {
	CiscoApiCredentials(ctx context.Context) (clientID, clientSecret string, err error)
}

// EoxClient Cisco EoX API 客户端
type EoxClient struct {
	httpClient  *http.Client
	credentials CredentialProvider
	tokenURL    string
	apiBase     string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewEoxClient 创建 EoX 客户端
func NewEoxClient(credentials CredentialProvider) *EoxClient {
	return &EoxClient{
		httpClient:  &http.Client{Timeout: pageRequestTimeout},
		credentials: credentials,
		tokenURL:    defaultTokenURL,
		apiBase:     defaultAPIBase,
	}
}

// NewEoxClientWithEndpoints 创建指向自定义端点的客户端，测试用
func NewEoxClientWithEndpoints(credentials CredentialProvider, tokenURL, apiBase string) *EoxClient {
	c := NewEoxClient(credentials)
	c.tokenURL = tokenURL
	c.apiBase = apiBase
	return c
}

// token 返回缓存的访问令牌，过期时刷新
func (c *EoxClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	clientID, clientSecret, err := c.credentials.CiscoApiCredentials(ctx)
	if err != nil {
		return "", fmt.Errorf("读取 API 凭证失败: %w", err)
	}
	if clientID == "" || clientSecret == "" {
		return "", &AuthError{StatusCode: 0, Body: "API 凭证未配置"}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("获取访问令牌失败: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("解析令牌响应失败: %w", err)
	}
	if token.AccessToken == "" {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: "令牌响应中无 access_token"}
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenExpiryMargin)
	return c.accessToken, nil
}

// invalidateToken 令牌失效，下次请求强制刷新
func (c *EoxClient) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}

// Query 执行单页查询。pageIndex 从 1 开始
func (c *EoxClient) Query(ctx context.Context, q string, pageIndex int) (*QueryResult, error) {
	page, err := c.fetchPage(ctx, q, pageIndex)
	if err != nil {
		return nil, err
	}
	return &QueryResult{
		RecordCount: page.PaginationResponseRecord.TotalRecords,
		Pages:       page.PaginationResponseRecord.LastIndex,
		Records:     page.EOXRecord,
		Errors:      page.EOXError,
	}, nil
}

// fetchPage 拉取单页，瞬时错误重试一次，认证失败刷新令牌后重试一次
func (c *EoxClient) fetchPage(ctx context.Context, q string, pageIndex int) (*EoxQueryResponse, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		page, err := c.doFetchPage(ctx, q, pageIndex)
		if err == nil {
			return page, nil
		}
		if authErr, ok := err.(*AuthError); ok {
			if attempt == 0 && authErr.StatusCode == http.StatusUnauthorized {
				// 令牌可能在途中过期
				c.invalidateToken()
				lastErr = err
				continue
			}
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *EoxClient) doFetchPage(ctx context.Context, q string, pageIndex int) (*EoxQueryResponse, error) {
	accessToken, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	// PID 可含 % 等任意字符，必须按路径段编码透传
	endpoint := fmt.Sprintf("%s/EOXByProductID/%d/%s",
		c.apiBase, pageIndex, url.PathEscape(q))

	reqCtx, cancel := context.WithTimeout(ctx, pageRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("EoX 页请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取 EoX 响应失败: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("EoX API 返回 HTTP %d: %s", resp.StatusCode, string(body))
	}

	var page EoxQueryResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("解析 EoX 页失败: %w", err)
	}
	return &page, nil
}

// QueryAll 惰性流式返回查询的全部记录。页与页之间休眠 waitTime 秒，
// 页级错误作为流中的错误项产出而不中断流，认证失败永久性中断。
// 取消 ctx 会在下一次页边界停止流。
func (c *EoxClient) QueryAll(ctx context.Context, q string, waitTime int) <-chan StreamItem {
	out := make(chan StreamItem)

	go func() {
		defer close(out)

		pageIndex := 1
		lastIndex := 1
		for pageIndex <= lastIndex {
			if ctx.Err() != nil {
				return
			}

			page, err := c.fetchPage(ctx, q, pageIndex)
			if err != nil {
				if IsAuthError(err) || ctx.Err() != nil {
					out <- StreamItem{Err: err}
					return
				}
				// 单页失败，跳过该页继续
				slog.Warn("EoX 页拉取失败，跳过", "query", q, "page", pageIndex, "error", err)
				out <- StreamItem{Err: fmt.Errorf("第 %d 页拉取失败: %w", pageIndex, err)}
				pageIndex++
				continue
			}

			if page.PaginationResponseRecord.LastIndex > 0 {
				lastIndex = page.PaginationResponseRecord.LastIndex
			}

			for i := range page.EOXRecord {
				select {
				case out <- StreamItem{Record: &page.EOXRecord[i]}:
				case <-ctx.Done():
					return
				}
			}

			pageIndex++
			if pageIndex <= lastIndex && waitTime > 0 {
				select {
				case <-time.After(time.Duration(waitTime) * time.Second):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
