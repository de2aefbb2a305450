package content

import (
	"github.com/HysterChat/pinco-clone/internal/domain"
)

func lines(texts ...string) []domain.ContentItem {
	out := make([]domain.ContentItem, len(texts))
	for i, t := range texts {
		out[i] = domain.ContentItem{Text: t}
	}
	return out
}

// fallbackTable — единственный источник запасного контента для всех категорий.
var fallbackTable = map[domain.Category][]domain.ContentItem{
	domain.CategoryReadingSentence: lines(
		"The implementation of quantum computing presents unprecedented challenges in cybersecurity protocols.",
		"Sustainable development requires careful consideration of environmental and economic factors.",
		"Recent advances in artificial intelligence have transformed modern medical diagnostic procedures.",
		"The correlation between educational achievement and socioeconomic status remains statistically significant.",
		"Global climate patterns demonstrate complex interactions between atmospheric and oceanic systems.",
		"Ethical considerations in biotechnology research continue to spark philosophical and moral debates.",
		"Advanced materials science innovations have revolutionized manufacturing processes across industries.",
		"Contemporary urban planning emphasizes sustainable infrastructure and community engagement principles.",
	),
	domain.CategoryRepeatSentence: lines(
		"The implementation of artificial intelligence in healthcare systems has revolutionized patient diagnosis and treatment planning across multiple medical disciplines.",
		"Environmental scientists have discovered that the complex interaction between oceanic currents and atmospheric conditions significantly impacts global climate patterns.",
		"The rapid advancement of quantum computing technology presents both unprecedented opportunities and significant challenges for cybersecurity infrastructure.",
		"Recent archaeological discoveries in the ancient ruins have provided compelling evidence about sophisticated urban planning systems in early civilizations.",
		"The integration of sustainable practices in corporate strategies has become increasingly crucial for maintaining competitive advantage in the global market.",
		"Researchers have demonstrated that neuroplasticity continues throughout adulthood, challenging previous assumptions about brain development and learning capacity.",
		"The emergence of decentralized financial systems has fundamentally transformed traditional banking paradigms and monetary policy implementation.",
		"Contemporary urban development must carefully balance population density requirements with environmental sustainability and quality of life considerations.",
		"The proliferation of artificial intelligence applications in legal practice has significantly impacted document review and case law analysis procedures.",
		"Advances in renewable energy technology have accelerated the transition toward sustainable power generation and distribution systems worldwide.",
		"The correlation between socioeconomic factors and educational outcomes requires comprehensive policy solutions addressing multiple systemic variables.",
		"Modern diplomatic relations increasingly incorporate economic cooperation and technological exchange alongside traditional political considerations.",
		"The development of advanced materials science has revolutionized manufacturing processes across numerous industrial sectors globally.",
		"Researchers investigating cognitive development have identified critical periods for language acquisition and skill formation in early childhood.",
		"The implementation of machine learning algorithms in financial markets has transformed traditional approaches to risk assessment and portfolio management.",
		"Contemporary approaches to organizational management emphasize adaptive leadership strategies and continuous professional development programs.",
	),
	domain.CategoryShortAnswer: lines(
		"How do you prioritize your tasks when facing multiple deadlines?",
		"What strategies do you use to stay focused during long meetings?",
		"How do you handle unexpected changes in your work schedule?",
		"What methods do you use to organize your digital workspace?",
		"How do you approach learning new technical skills for your job?",
		"What steps do you take to prepare for important presentations?",
		"How do you maintain work-life balance in a demanding role?",
		"What techniques do you use for effective time management?",
		"How do you collaborate with team members in different time zones?",
		"What strategies help you stay productive during remote work?",
		"How do you handle constructive feedback from your colleagues?",
		"What methods do you use to track project progress?",
		"How do you approach solving complex technical problems?",
		"What steps do you take to improve team communication?",
		"How do you maintain focus during long coding sessions?",
		"What strategies do you use for effective code review?",
		"How do you handle disagreements in technical discussions?",
		"What methods help you stay updated with industry trends?",
		"How do you approach mentoring junior team members?",
		"What techniques do you use for debugging complex issues?",
		"How do you maintain documentation for your projects?",
		"What strategies do you use for continuous learning?",
		"How do you handle tight project deadlines effectively?",
		"What methods do you use to ensure code quality?",
	),
	domain.CategoryStory: lines(
		"Last weekend, Sarah decided to try a new hobby - painting. She bought some basic art supplies and set up a small studio in her spare room. After watching a few online tutorials, she created her first landscape painting. Though it wasn't perfect, she felt proud of her accomplishment and discovered a new passion.",
		"A young programmer named Alex spent weeks developing a helpful app for his local community. The app helped people find and share fresh produce from their gardens. His neighbors loved the idea, and soon the whole neighborhood was using it to share their homegrown vegetables and fruits.",
		"Maria had always dreamed of opening her own bakery. She started small, selling cupcakes at local markets on weekends. Her unique flavors and beautiful decorations quickly gained popularity. After a year of hard work, she finally saved enough to open her own small shop in the city center.",
	),
	domain.CategorySentenceBuild: {
		{Text: "She went to the market yesterday.", Phrases: []string{"went to", "yesterday", "the market"}},
		{Text: "He runs very fast.", Phrases: []string{"very fast", "runs", "he"}},
		{Text: "It was raining heavily outside.", Phrases: []string{"was raining", "outside", "heavily"}},
		{Text: "I finished my homework.", Phrases: []string{"homework", "my", "finished", "I"}},
		{Text: "We had lunch together.", Phrases: []string{"lunch", "we", "together", "had"}},
		{Text: "She walked the dog in the park.", Phrases: []string{"dog", "in the park", "walked"}},
		{Text: "I woke up early.", Phrases: []string{"early", "woke up", "I"}},
		{Text: "I just heard the news.", Phrases: []string{"the news", "heard", "just"}},
	},
	domain.CategoryOpenQuestion: lines(
		"Describe a significant challenge you faced in your professional life and explain how you overcame it, including the specific strategies you used.",
		"What impact do you think artificial intelligence will have on your field of work in the next decade, and how are you preparing for these changes?",
		"Discuss a time when you had to adapt to a major change in your workplace or studies, and what lessons you learned from this experience.",
		"How has technology transformed the way we learn and work in your industry, and what further changes do you anticipate in the future?",
		"Describe a situation where you had to collaborate with people from different cultural backgrounds and how you ensured effective communication.",
		"What do you consider to be the most pressing global challenge today, and how do you think it should be addressed?",
		"Explain how your educational or professional background has prepared you for future career opportunities in your field.",
		"Describe a project where you had to demonstrate leadership skills and how you ensured its successful completion.",
		"How do you think the concept of work-life balance has evolved in recent years, and what strategies do you use to maintain it?",
		"What role do you think continuous learning plays in professional development, and how do you pursue it in your own career?",
	),
}

// Fallback возвращает копию запасного списка категории.
func Fallback(c domain.Category) []domain.ContentItem {
	src := fallbackTable[c]
	out := make([]domain.ContentItem, len(src))
	copy(out, src)
	return out
}

// padWithFallback дополняет fresh до target. Сначала берутся запасные элементы,
// которых нет ни в истории, ни в выдаче, затем уже выданные ранее. Повторы внутри
// выдачи появляются, только если target больше числа уникальных элементов.
func padWithFallback(fresh []domain.ContentItem, target int, history map[string]struct{}, table []domain.ContentItem) []domain.ContentItem {
	out := make([]domain.ContentItem, 0, target)
	out = append(out, fresh...)
	if len(out) >= target || len(table) == 0 {
		return out
	}
	used := make(map[string]struct{}, target)
	for _, it := range out {
		used[it.Text] = struct{}{}
	}
	take := func(skipHistory bool) {
		for _, it := range table {
			if len(out) >= target {
				return
			}
			if _, ok := used[it.Text]; ok {
				continue
			}
			if _, seen := history[it.Text]; skipHistory && seen {
				continue
			}
			used[it.Text] = struct{}{}
			out = append(out, it)
		}
	}
	take(true)
	take(false)
	for i := 0; len(out) < target; i++ {
		out = append(out, table[i%len(table)])
	}
	return out
}
