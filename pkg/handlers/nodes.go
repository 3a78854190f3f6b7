// Package handlers implements the HTTP API over the svxlink document.
// Every request loads the document fresh from disk; the document itself
// has no synchronization, so it is never shared between requests.
package handlers

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/svxtools/svxconf/pkg/backup"
	"github.com/svxtools/svxconf/pkg/bus"
	apierrors "github.com/svxtools/svxconf/pkg/errors"
	"github.com/svxtools/svxconf/pkg/svxconf"
	"github.com/svxtools/svxconf/pkg/toolconfig"
)

// NodeHandler serves the remote node endpoints
type NodeHandler struct {
	cfg     *toolconfig.Config
	backups *backup.Manager
}

// NewNodeHandler creates a node handler
func NewNodeHandler(cfg *toolconfig.Config, backups *backup.Manager) *NodeHandler {
	return &NodeHandler{cfg: cfg, backups: backups}
}

// nodeResponse is the JSON shape of one remote node
type nodeResponse struct {
	Section string            `json:"section"`
	Options map[string]string `json:"options"`
}

func toNodeResponse(node *svxconf.NetNode) nodeResponse {
	options := make(map[string]string)
	for _, item := range node.Items() {
		options[item.Name] = item.Value
	}
	return nodeResponse{Section: node.SectionName(), Options: options}
}

func (h *NodeHandler) load(c *gin.Context) (*svxconf.Document, bool) {
	doc, err := svxconf.Load(h.cfg.General.SvxlinkConf)
	if err != nil {
		apierrors.InternalServerError(c, err)
		return nil, false
	}
	return doc, true
}

func (h *NodeHandler) findNode(c *gin.Context, name string) (*svxconf.NetNode, bool) {
	doc, ok := h.load(c)
	if !ok {
		return nil, false
	}

	nodes, err := doc.RemoteNodes()
	if err != nil {
		apierrors.InternalServerError(c, err)
		return nil, false
	}

	for _, node := range nodes {
		if node.SectionName() == name {
			return node, true
		}
	}

	apierrors.NotFound(c, fmt.Errorf("no TYPE=Net section named %q", name))
	return nil, false
}

// ListNodes returns all TYPE=Net sections
func (h *NodeHandler) ListNodes(c *gin.Context) {
	doc, ok := h.load(c)
	if !ok {
		return
	}

	nodes, err := doc.RemoteNodes()
	if err != nil {
		apierrors.InternalServerError(c, err)
		return
	}

	out := make([]nodeResponse, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, toNodeResponse(node))
	}
	c.JSON(http.StatusOK, gin.H{"nodes": out})
}

// GetNode returns one TYPE=Net section by name
func (h *NodeHandler) GetNode(c *gin.Context) {
	node, ok := h.findNode(c, c.Param("name"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toNodeResponse(node))
}

// createNodeRequest is the body of POST /api/nodes
type createNodeRequest struct {
	Section string `json:"section" binding:"required"`
	Host    string `json:"host" binding:"required"`
	TCPPort string `json:"tcp_port" binding:"required"`
	AuthKey string `json:"auth_key"`
	Codec   string `json:"codec"`
}

// CreateNode adds a TYPE=Net section and persists the document. The live
// config is backed up before it is rewritten.
func (h *NodeHandler) CreateNode(c *gin.Context) {
	var req createNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err)
		return
	}

	node, err := svxconf.NewNetNode(req.Section, nil)
	if err != nil {
		apierrors.InternalServerError(c, err)
		return
	}

	pairs := []svxconf.Item{
		{Name: "HOST", Value: req.Host},
		{Name: "TCP_PORT", Value: req.TCPPort},
		{Name: "AUTH_KEY", Value: req.AuthKey},
		{Name: "CODEC", Value: req.Codec},
	}
	for _, p := range pairs {
		if p.Value == "" {
			continue
		}
		if err := node.Set(p.Name, p.Value); err != nil {
			apierrors.ValidationError(c, err)
			return
		}
	}

	doc, ok := h.load(c)
	if !ok {
		return
	}

	if err := doc.AddSection(node); err != nil {
		apierrors.Conflict(c, err)
		return
	}

	path := h.cfg.General.SvxlinkConf
	b, err := h.backups.Create(path, fmt.Sprintf("before adding node %s", req.Section))
	if err != nil {
		apierrors.OperationFailed(c, err)
		return
	}
	bus.Publish(bus.Event{Type: bus.EventBackupCreated, Data: b.ID})

	if err := doc.Write(path, svxconf.ModeTruncate); err != nil {
		apierrors.OperationFailed(c, err)
		return
	}

	bus.Publish(bus.Event{Type: bus.EventSectionAdded, Section: req.Section})
	bus.Publish(bus.Event{Type: bus.EventDocumentWritten, Section: req.Section, Data: path})

	c.JSON(http.StatusCreated, toNodeResponse(node))
}

// ProbeNode checks whether a remote node accepts TCP connections
func (h *NodeHandler) ProbeNode(c *gin.Context) {
	name := c.Param("name")
	node, ok := h.findNode(c, name)
	if !ok {
		return
	}

	node.SetProbeTimeout(h.cfg.Probe.Timeout())

	online, err := node.IsOnline()
	if err != nil {
		var perr *svxconf.PreconditionError
		if stderrors.As(err, &perr) {
			apierrors.ValidationError(c, err)
			return
		}
		apierrors.InternalServerError(c, err)
		return
	}

	bus.Publish(bus.Event{Type: bus.EventProbeFinished, Section: name, Data: online})

	resp := gin.H{"section": name, "online": online}
	if !online && node.LastProbeError() != nil {
		resp["cause"] = node.LastProbeError().Error()
	}
	c.JSON(http.StatusOK, resp)
}

// ExportDocument streams the whole document in INI form
func (h *NodeHandler) ExportDocument(c *gin.Context) {
	doc, ok := h.load(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	if err := doc.WriteTo(c.Writer); err != nil {
		// Headers already went out; nothing sensible left to send
		_ = c.Error(err)
	}
}
