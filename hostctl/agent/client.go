// Package agent 通过HTTP JSON调用宿主机代理，实现 hostctl.Host。
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/hostctl"
	"io/ioutil"
	"net/http"
	"strings"
	"time"
)

// 传输失败时分步枚举与集群控制返回的状态码
const StatusCallFailed uint32 = 1726

var _ hostctl.Host = (*Client)(nil)

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) call(ctx context.Context, op string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/"+op, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		logging.L().Errorf("调用主机代理 %s 失败: %v", op, err)
		return fmt.Errorf("%w: %v", hostctl.ErrUnreachable, err)
	}
	defer resp.Body.Close()
	rbody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", hostctl.ErrUnreachable, err)
	}
	if resp.StatusCode > 399 {
		var eb errorBody
		_ = json.Unmarshal(rbody, &eb)
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", hostctl.ErrNotFound, eb.Error)
		case http.StatusGone:
			return fmt.Errorf("%w: %s", hostctl.ErrInvalidHandle, eb.Error)
		case http.StatusUnauthorized, http.StatusServiceUnavailable:
			return fmt.Errorf("%w: %d %s", hostctl.ErrUnreachable, resp.StatusCode, eb.Error)
		}
		return fmt.Errorf("主机代理 %s 返回 %d: %s", op, resp.StatusCode, eb.Error)
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(rbody))
	dec.UseNumber()
	return dec.Decode(out)
}

type handleReq struct {
	Handle  hostctl.Handle  `json:"handle"`
	Cluster hostctl.Handle  `json:"cluster,omitempty"`
	Kind    hostctl.Kind    `json:"kind,omitempty"`
	Name    string          `json:"name,omitempty"`
	Control hostctl.Control `json:"control,omitempty"`
	Target  hostctl.Handle  `json:"target,omitempty"`
}

type handleRes struct {
	Handle hostctl.Handle `json:"handle"`
}

type enumReq struct {
	Enum  hostctl.Handle `json:"enum"`
	Index int            `json:"index"`
	Size  int            `json:"size,omitempty"`
}

type enumRes struct {
	Size   int    `json:"size"`
	Name   string `json:"name"`
	Status uint32 `json:"status"`
}

type stateRes struct {
	Code  int32  `json:"code"`
	Owner string `json:"owner"`
}

type statusRes struct {
	Status uint32 `json:"status"`
}

type textRes struct {
	Value string `json:"value"`
}

type pathReq struct {
	Path string `json:"path"`
}

type boolRes struct {
	Value bool `json:"value"`
}

type volumeRes struct {
	Volume *hostctl.VolumeInfo `json:"volume"`
}

type queryReq struct {
	Query string `json:"query"`
}

type methodReq struct {
	Path   string         `json:"path"`
	Method string         `json:"method"`
	In     hostctl.Params `json:"in"`
}

type methodRes struct {
	Out hostctl.Params `json:"out"`
}

func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, "ping", struct{}{}, nil)
}

func (c *Client) EnumProbe(ctx context.Context, enum hostctl.Handle, index int) (int, uint32) {
	var res enumRes
	if err := c.call(ctx, "enumProbe", enumReq{Enum: enum, Index: index}, &res); err != nil {
		return 0, StatusCallFailed
	}
	return res.Size, res.Status
}

func (c *Client) EnumFetch(ctx context.Context, enum hostctl.Handle, index int, size int) (string, uint32) {
	var res enumRes
	if err := c.call(ctx, "enumFetch", enumReq{Enum: enum, Index: index, Size: size}, &res); err != nil {
		return "", StatusCallFailed
	}
	return res.Name, res.Status
}

func (c *Client) CloseEnum(enum hostctl.Handle) error {
	return c.call(context.Background(), "closeEnum", enumReq{Enum: enum}, nil)
}

func (c *Client) OpenCluster(ctx context.Context, name string) (hostctl.Handle, error) {
	var res handleRes
	err := c.call(ctx, "openCluster", handleReq{Name: name}, &res)
	return res.Handle, err
}

func (c *Client) ClusterName(ctx context.Context, cluster hostctl.Handle) (string, error) {
	var res textRes
	err := c.call(ctx, "clusterName", handleReq{Handle: cluster}, &res)
	return res.Value, err
}

func (c *Client) OpenEnum(ctx context.Context, cluster hostctl.Handle, kind hostctl.Kind) (hostctl.Handle, error) {
	var res handleRes
	err := c.call(ctx, "openEnum", handleReq{Cluster: cluster, Kind: kind}, &res)
	return res.Handle, err
}

func (c *Client) Open(ctx context.Context, cluster hostctl.Handle, kind hostctl.Kind, name string) (hostctl.Handle, error) {
	var res handleRes
	err := c.call(ctx, "open", handleReq{Cluster: cluster, Kind: kind, Name: name}, &res)
	return res.Handle, err
}

func (c *Client) Close(h hostctl.Handle) error {
	return c.call(context.Background(), "close", handleReq{Handle: h}, nil)
}

func (c *Client) State(ctx context.Context, h hostctl.Handle) (int32, string, error) {
	var res stateRes
	if err := c.call(ctx, "state", handleReq{Handle: h}, &res); err != nil {
		return hostctl.StateUnknown, "", err
	}
	return res.Code, res.Owner, nil
}

func (c *Client) Control(ctx context.Context, h hostctl.Handle, ctl hostctl.Control, target hostctl.Handle) uint32 {
	var res statusRes
	if err := c.call(ctx, "control", handleReq{Handle: h, Control: ctl, Target: target}, &res); err != nil {
		return StatusCallFailed
	}
	return res.Status
}

func (c *Client) ResourceType(ctx context.Context, h hostctl.Handle) (string, error) {
	var res textRes
	err := c.call(ctx, "resourceType", handleReq{Handle: h}, &res)
	return res.Value, err
}

func (c *Client) SharedVolume(ctx context.Context, h hostctl.Handle) (*hostctl.VolumeInfo, error) {
	var res volumeRes
	err := c.call(ctx, "sharedVolume", handleReq{Handle: h}, &res)
	return res.Volume, err
}

func (c *Client) IsPathOnSharedVolume(ctx context.Context, path string) (bool, error) {
	var res boolRes
	err := c.call(ctx, "isPathOnSharedVolume", pathReq{Path: path}, &res)
	return res.Value, err
}

func (c *Client) ExecQuery(ctx context.Context, query string) (hostctl.Handle, error) {
	var res handleRes
	err := c.call(ctx, "execQuery", queryReq{Query: query}, &res)
	return res.Handle, err
}

func (c *Client) GetObject(ctx context.Context, path string) (*hostctl.Object, error) {
	var o hostctl.Object
	if err := c.call(ctx, "getObject", pathReq{Path: path}, &o); err != nil {
		return nil, err
	}
	if o.Props == nil {
		o.Props = hostctl.Params{}
	}
	return &o, nil
}

func (c *Client) ExecMethod(ctx context.Context, path, method string, in hostctl.Params) (hostctl.Params, error) {
	var res methodRes
	if err := c.call(ctx, "execMethod", methodReq{Path: path, Method: method, In: in}, &res); err != nil {
		return nil, err
	}
	if res.Out == nil {
		return nil, errors.New("主机代理未返回方法结果")
	}
	return res.Out, nil
}
