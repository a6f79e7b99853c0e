package domain

// User-facing reply texts. Handlers and tests share these, so the bot
// answers with exactly the same string every time.
const (
	GreetingMessage = "Привет! 👋\n\n" +
		"Я бот с интеграцией Yandex GPT. Просто отправь мне любое сообщение, " +
		"и я передам его в Yandex GPT, а затем отправлю тебе ответ модели!"

	HelpMessage = "Доступные команды:\n" +
		"/start - Начать работу с ботом\n" +
		"/help - Показать эту справку\n\n" +
		"Просто отправь мне любое сообщение, и я передам его в Yandex GPT, " +
		"а затем отправлю тебе ответ модели!"

	CompletionFailedMessage = "Произошла ошибка при обращении к Yandex GPT. Попробуйте позже."

	TextOnlyMessage = "Пожалуйста, отправьте текстовое сообщение."
)
