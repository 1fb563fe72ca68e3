package stopwords

var russian = []string{
	"а", "без", "более", "больше", "будет", "будто", "бы", "был", "была", "были",
	"было", "быть", "в", "вам", "вас", "ваш", "ваша", "ваше", "ваши", "вдруг",
	"ведь", "во", "вот", "впрочем", "все", "всегда", "всего", "всех", "всю", "вся",
	"всё", "вы", "где", "да", "даже", "два", "для", "до", "другой", "его",
	"ее", "её", "ей", "ему", "если", "есть", "еще", "ещё", "ж", "же",
	"за", "зачем", "здесь", "и", "из", "или", "им", "иногда", "их", "к",
	"как", "какая", "какой", "когда", "конечно", "которая", "которое", "которые", "который", "кто",
	"куда", "ли", "лучше", "между", "меня", "мне", "много", "может", "можно", "мой",
	"моя", "мое", "моё", "мои", "мы", "на", "над", "надо", "наконец", "нас",
	"наш", "наша", "наше", "наши", "не", "него", "нее", "неё", "ней", "нельзя",
	"нет", "ни", "нибудь", "никогда", "ним", "них", "ничего", "но", "ну", "о",
	"об", "один", "одна", "одно", "он", "она", "они", "оно", "опять", "от",
	"очень", "перед", "по", "под", "после", "потом", "потому", "почти", "при", "про",
	"просто", "раз", "разве", "с", "сам", "сама", "само", "свое", "своё", "свои",
	"свой", "своя", "свою", "себе", "себя", "сейчас", "со", "совсем", "так", "также",
	"такой", "там", "тебе", "тебя", "тем", "теперь", "то", "тогда", "того", "тоже",
	"той", "только", "том", "тот", "три", "тут", "ты", "у", "уж", "уже",
	"хорошо", "хоть", "чего", "чей", "чем", "через", "что", "чтоб", "чтобы", "чуть",
	"эта", "эти", "этим", "этих", "это", "этого", "этой", "этом", "этот", "эту",
	"я", "вообще", "где-то", "кого", "кому", "ком", "чему", "чём", "нам", "нами",
	"вами", "ими", "ею", "нему", "ней", "каждый", "каждая", "каждое", "любой", "сюда",
	"туда", "оттуда", "отсюда", "всем", "всеми", "всему", "этими", "теми", "тех", "тому",
	"будь", "будут", "буду", "будем", "будете", "будешь", "была", "бывает", "есть", "нету",
}
