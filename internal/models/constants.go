package models

const (
	// DefaultMeetingLocation видео-встреча по умолчанию, если не задана в конфиге
	DefaultMeetingLocation = "https://meet.google.com/nuz-anuz-yrh"

	// SummaryFormat заголовок события: 【予約】{имя клиента} 様 相談
	SummaryFormat = "【予約】%s 様 相談"

	// DescriptionFormat текст события со ссылкой на встречу
	DescriptionFormat = "予約ありがとうございます。\n時間になりましたら以下のURLよりご参加ください。\n\n参加URL: %s"
)

const (
	// WorkerQueueSize размер очереди воркера журнала
	WorkerQueueSize = 128

	// DefaultSlotLockTTL время удержания слота между проверкой и записью, секунды
	DefaultSlotLockTTL = 30
)
