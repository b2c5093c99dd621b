package protocol

type SwitchReq struct {
	Name       string `json:"name" valid:"Required"`
	Type       string `json:"type,omitempty"`
	NetAdapter string `json:"netAdapter,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type SwitchUpdateReq struct {
	Name  *string `json:"name,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// VhdReq Size如"40GB"，差异磁盘需要ParentPath
type VhdReq struct {
	Path       string `json:"path" valid:"Required"`
	Type       string `json:"type,omitempty"`
	Size       string `json:"size,omitempty"`
	ParentPath string `json:"parentPath,omitempty"`
}

type VhdResizeReq struct {
	Path string `json:"path" valid:"Required"`
	Size string `json:"size" valid:"Required"`
}

type PathReq struct {
	Path string `json:"path" form:"path" valid:"Required"`
}

type SnapshotReq struct {
	Name string `json:"name,omitempty"`
}

type RenameReq struct {
	Name string `json:"name" valid:"Required"`
}
