package opc

import (
	"context"
	"fmt"

	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/id"
	"github.com/gopcua/opcua/ua"
	"github.com/sirupsen/logrus"
)

// Client is the gopcua-backed Browser. One client serves one endpoint; the
// underlying secure channel is shared across Browse calls.
type Client struct {
	endpoint string
	conn     *opcua.Client
}

// Dial connects to an OPC UA endpoint with anonymous auth and no message
// security, which is what the industrial edge servers in scope expose.
func Dial(ctx context.Context, endpoint string) (*Client, error) {
	conn, err := opcua.NewClient(endpoint,
		opcua.SecurityMode(ua.MessageSecurityModeNone),
		opcua.AuthAnonymous(),
	)
	if err != nil {
		return nil, fmt.Errorf("create OPC UA client for %s: %w", endpoint, err)
	}
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", endpoint, err)
	}
	logrus.Infof("Connected to OPC UA endpoint %s", endpoint)
	return &Client{endpoint: endpoint, conn: conn}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// Browse lists the hierarchical children of ref, following continuation
// points until the server reports the listing complete. Display name and
// node class come back in the browse response itself, so one logical
// listing costs one round trip per page rather than one per child.
func (c *Client) Browse(ctx context.Context, ref NodeRef) ([]BrowseItem, error) {
	nid, err := ua.ParseNodeID(string(ref))
	if err != nil {
		return nil, fmt.Errorf("parse node id %q: %w", ref, err)
	}

	req := &ua.BrowseRequest{
		NodesToBrowse: []*ua.BrowseDescription{{
			NodeID:          nid,
			BrowseDirection: ua.BrowseDirectionForward,
			ReferenceTypeID: ua.NewNumericNodeID(0, id.HierarchicalReferences),
			IncludeSubtypes: true,
			NodeClassMask:   uint32(ua.NodeClassAll),
			ResultMask:      uint32(ua.BrowseResultMaskAll),
		}},
	}

	resp, err := c.conn.Browse(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("browse %s: %w", ref, err)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	var items []BrowseItem
	res := resp.Results[0]
	if res.StatusCode != ua.StatusOK {
		return nil, fmt.Errorf("browse %s: status %s", ref, res.StatusCode)
	}
	items = appendReferences(items, res.References)

	cp := res.ContinuationPoint
	for len(cp) > 0 {
		nextResp, err := c.conn.BrowseNext(ctx, &ua.BrowseNextRequest{
			ContinuationPoints: [][]byte{cp},
		})
		if err != nil {
			return nil, fmt.Errorf("browse next %s: %w", ref, err)
		}
		if len(nextResp.Results) == 0 {
			break
		}
		next := nextResp.Results[0]
		if next.StatusCode != ua.StatusOK {
			return nil, fmt.Errorf("browse next %s: status %s", ref, next.StatusCode)
		}
		items = appendReferences(items, next.References)
		cp = next.ContinuationPoint
	}

	return items, nil
}

func appendReferences(items []BrowseItem, refs []*ua.ReferenceDescription) []BrowseItem {
	for _, rd := range refs {
		if rd == nil || rd.NodeID == nil || rd.NodeID.NodeID == nil {
			continue
		}
		name := ""
		if rd.DisplayName != nil {
			name = rd.DisplayName.Text
		}
		items = append(items, BrowseItem{
			Ref:      NodeRef(rd.NodeID.NodeID.String()),
			Name:     name,
			IsFolder: rd.NodeClass == ua.NodeClassObject,
		})
	}
	return items
}
