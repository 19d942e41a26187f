package messages

// Ticket panel.
const (
	PanelPlaceholder   = "문의하실 분야를 선택하세요"
	NoCategoriesLabel  = "등록된 카테고리 없음"
	NoCategoriesNotice = "먼저 관리자 명령어로 카테고리를 등록해주세요."

	// SubPlaceholder is formatted with the main category.
	SubPlaceholder = "%s의 세부 항목을 선택하세요"

	// SubPrompt is formatted with the main category.
	SubPrompt = "**%s**의 하위 항목을 선택해주세요."

	// MixedCategory is formatted with the main category.
	MixedCategory = "**%s** 카테고리는 하위 항목이 있는 항목과 없는 항목이 함께 등록되어 있습니다. 관리자에게 카테고리 설정을 확인해달라고 요청해주세요."
)

// Ticket channel.
const (
	// TicketWelcome is formatted with the requester mention.
	TicketWelcome = "%s님, 문의가 접수되었습니다."

	TicketWelcomeTitle = "문의 접수"

	// TicketWelcomeDescription is formatted with the category.
	TicketWelcomeDescription = "**%s** 관련 문의입니다.\n관리자가 확인 전까지 문의 내용을 남겨주세요."

	CloseButtonLabel = "문의 종료"

	// TicketCreated is formatted with the channel ID.
	TicketCreated = "티켓이 생성되었습니다: <#%s>"
)

// Ticket lifecycle.
const (
	TicketClosedTitle       = "문의가 종료되었습니다"
	TicketClosedDescription = "유저는 이제 이 채널을 볼 수 없습니다.\n관련 기록을 저장하고 삭제하려면 아래 버튼을 누르세요."
	DeleteButtonLabel       = "채널 백업 및 삭제"

	// TranscriptHeader is formatted with the channel name.
	TranscriptHeader = "--- Ticket Log: %s ---\n"

	// TranscriptCaption is formatted with the channel name.
	TranscriptCaption = "📄 **티켓 종료 기록:** `%s`"

	DefaultLogChannelName = "티켓-로그"
)

// Admin commands.
const (
	SetupDone     = "인터페이스를 생성했습니다."
	EmbedUpdated  = "임베드 정보가 업데이트되었습니다."
	NoSubCategory = "없음"
	AdminOnly     = "관리자만 사용할 수 있는 명령어입니다."
	GuildOnly     = "서버에서만 사용할 수 있습니다."

	// CategoryAdded is formatted with the main and sub category.
	CategoryAdded = "카테고리 등록 완료: **%s** > **%s**"

	// CategoryMixedWarning is appended to CategoryAdded and formatted with the main category.
	CategoryMixedWarning = "\n⚠️ **%s**에 하위 항목이 없는 항목과 있는 항목이 함께 등록되어 있어 선택 시 오류가 표시됩니다."

	// AdminRegistered is formatted with the role mention.
	AdminRegistered = "%s 역할이 관리자로 등록되었습니다."
)

// Errors.
const (
	ErrUserErrorProcessing = "요청을 처리하는 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
)
