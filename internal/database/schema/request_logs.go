package schema

type RequestLog struct {
	Base
	RequestID     string  `gorm:"size:36;index" json:"request_id"`
	IPAddress     string  `gorm:"size:45" json:"ip_address"`
	Method        string  `gorm:"size:8" json:"method"`
	Endpoint      string  `gorm:"size:255" json:"endpoint"`
	RequestParams JSONMap `gorm:"type:jsonb" json:"request_params"`
	Status        int     `json:"status"`
	ExecutionTime int64   `json:"execution_time"`
}
