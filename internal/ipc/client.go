package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Tonearm.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Now retrieves the current playback snapshot.
func (c *Client) Now() (*NowResponse, error) {
	var resp NowResponse
	if err := c.client.Call("Tonearm.Now", NowRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryList retrieves recent plays, newest first.
func (c *Client) HistoryList(limit int) (*HistoryListResponse, error) {
	var resp HistoryListResponse
	if err := c.client.Call("Tonearm.HistoryList", HistoryListRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Tonearm.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop asks the daemon to shut down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Tonearm.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
