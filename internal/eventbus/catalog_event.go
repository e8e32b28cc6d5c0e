package eventbus

type CatalogEventType string

const (
	CatalogEventPromptChanged      CatalogEventType = "PromptChanged"      // 提示词或风格指南被修改
	CatalogEventReferenceCreated   CatalogEventType = "ReferenceCreated"   // 新建型号（含对账补建）
	CatalogEventReferenceDescribed CatalogEventType = "ReferenceDescribed" // 型号描述被生成并保存
)

type CatalogEvent struct {
	Type        CatalogEventType
	ReferenceID uint
	Brand       string
	Name        string // 型号名称或提示词名称
	Purpose     string
	AIModel     string
	Source      string // user, generation, reconcile
}

type CatalogEventHandler = Handler[CatalogEvent]
type CatalogEventBus = Bus[CatalogEventType, CatalogEvent]

func NewCatalogEventBus() *CatalogEventBus {
	return NewBus[CatalogEventType, CatalogEvent]()
}
