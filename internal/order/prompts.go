package order

// Reply-keyboard button labels. The transport matches incoming text
// against these verbatim, so they must stay in sync with the keyboards.
const (
	BtnStartOrder   = "Сделать заказ"
	BtnShareContact = "Поделиться контактом"
	BtnNewOrder     = "Новый заказ"
	BtnFAQ          = "FAQ"
)

// User-facing texts of every conversation step.
const (
	textGreeting = "Привет! Нажмите «Сделать заказ», чтобы начать оформление."

	textContactPrompt = "Нажмите на кнопку \"Поделиться контактом\", чтобы мы могли с вами связаться."

	textContactRetry = "Не удалось получить контакт. Попробуйте ещё раз нажать «" + BtnShareContact + "»."

	// Shown when order.strict_quantity is off: free-text product choice.
	textMenuPermissive = "Напишите, какие продукты и в каком количестве вам нужны: \n" +
		"\n" +
		"Икра горбуши (слабосолёная, вылов июль 2025): \n" +
		"\n" +
		"250 г — 2 500 ₽; \n" +
		"500 г — 4 000 ₽. \n" +
		"\n" +
		"Морской гребешок (сырой, диаметр 6–8 см): \n" +
		"\n" +
		"500 г (7–9 шт.) — 2 300 ₽; \n" +
		"1 кг — 4 500 ₽. \n" +
		"\n" +
		"Фаланги камчатского краба (варёно‑мороженые, первая фаланга, размер 8–10 см): \n" +
		"\n" +
		"600 г — 4 500 ₽; \n" +
		"1,2 кг — 8 800 ₽. \n" +
		"\n" +
		"Креветка Ботан (варено-мороженая, 800 гр., размер одной креветки 15–16 см)\n" +
		"1 коробка (800 гр) — 3800 р."

	// Shown when order.strict_quantity is on: a single product, the
	// answer must be a positive pack count.
	textMenuStrict = "Укажите количество упаковок (по 500 г). Введите число, например: 2 \n" +
		"---------------------------\n" +
		"Сейчас в наличии икра горбуши в фасовке 500г (вылов июль 2025) \n" +
		"\n" +
		"Специальное предложение: \n" +
		"Обычная цена: <s>5000₽</s> → Для вас: <b>4000₽</b> за 500г \n" +
		"\n" +
		"Доп бонус на первый заказ: \n" +
		"-500₽ на каждые 500г при заказе через бот @ikorka_moscow_bot и подписку на канал @ikorka_moscow"

	textQuantityRetry = "Пожалуйста, введите положительное число, например: 2"

	textNamePrompt = "Укажите ФИО получателя"

	textAddressPrompt = "Укажите адрес доставки (город, улица, дом, кв., подъезд, этаж)"

	textPhonePrompt = "Укажите номер телефона для связи"

	textExtraInfoPrompt = "Добавьте дополнительную информацию по заказу (по желанию). Если нет — отправьте «-»."

	textOrderAccepted = "Заказ принят в обработку! Ждите ответа от администратора."

	textSubmitFailed = "Не удалось принять заказ. Попробуйте ещё раз позже."

	textUnrecognized = "⚠️ Я не понял ваш запрос. Начните заново — /start"

	// TextInternalError is the reply sent by the recovery path when a
	// handler panics or fails unexpectedly.
	TextInternalError = "⚠️ Произошла ошибка. Пожалуйста, начните заново — /start"

	// TextIdleNotice is sent by the transport layer when it detects the
	// user returned after the idle timeout.
	TextIdleNotice = "Похоже, вы были в простое более 9 минут. Чтобы начать заново, отправьте /start"

	textFAQ = "<b>Где и когда была произведена икра?</b>\n" +
		"Наша дальневосточная красная икра добывается из тихоокеанских лососевой рыбы горбуши в регионах Дальнего Востока России, преимущественно на Сахалине \n" +
		"\n" +
		"Сейчас в наличии свежайший вылов горбуши от июля 2025г. \n" +
		"\n" +
		"<b>У вас качественная икра?</b> \n" +
		"Да, вся икра производится по ГОСТу 1629-2015, имеет Декларацию соответствия и Удостоверение качества. \n" +
		"Сорт: Первый \n" +
		"\n" +
		"<b>Какой срок годности у икры?</b>\n" +
		"Срок годности нашей икры — до 8 месяцев при соблюдении температурного режима от -2 до -6°C. После вскрытия упаковки продукт нужно употребить в течение 72 часов. \n" +
		"\n" +
		"<b>Как правильно хранить икру дома?</b> \n" +
		"Храните икру в холодильнике при температуре от 0 до +5°C в оригинальной пластиковой таре с плотно закрытой крышкой. \n" +
		"\n" +
		"<b>Есть ли скидки или акции на икру?</b>\n" +
		"Доп бонус на первый заказ: \n" +
		"-500₽ на каждые 500г при заказе через бот @ikorka_moscow_bot и подписке на канал @ikorka_moscow"
)
